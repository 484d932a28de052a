package filesearch

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind 外部服务错误分类，供上层按类别选择用户提示
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindRateLimited
	KindInvalidCredential
	KindUnavailable
	KindNetworkError
)

func (k ErrorKind) String() string {
	switch k {
	case KindRateLimited:
		return "rate_limited"
	case KindInvalidCredential:
		return "invalid_credential"
	case KindUnavailable:
		return "unavailable"
	case KindNetworkError:
		return "network_error"
	default:
		return "unknown"
	}
}

type ServiceError struct {
	Kind   ErrorKind
	Op     string
	Status int
	Err    error
}

func (e *ServiceError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("filesearch: %s failed (%s, status %d): %v", e.Op, e.Kind, e.Status, e.Err)
	}
	return fmt.Sprintf("filesearch: %s failed (%s): %v", e.Op, e.Kind, e.Err)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

// Kind 提取错误分类，非ServiceError返回KindUnknown
func Kind(err error) ErrorKind {
	var serviceErr *ServiceError
	if errors.As(err, &serviceErr) {
		return serviceErr.Kind
	}
	return KindUnknown
}

func classifyStatus(status int) ErrorKind {
	switch {
	case status == http.StatusTooManyRequests:
		return KindRateLimited
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return KindInvalidCredential
	case status >= http.StatusInternalServerError:
		return KindUnavailable
	default:
		return KindUnknown
	}
}

func statusError(op string, status int, err error) *ServiceError {
	return &ServiceError{
		Kind:   classifyStatus(status),
		Op:     op,
		Status: status,
		Err:    err,
	}
}

func networkError(op string, err error) *ServiceError {
	return &ServiceError{
		Kind: KindNetworkError,
		Op:   op,
		Err:  err,
	}
}
