package service

import (
	"errors"
)

// 业务错误分类，handler 层据此映射响应码。
// 租户不匹配与记录不存在不作区分，统一按 ErrNotFound 返回
var (
	ErrNotFound         = errors.New("not found")
	ErrInvalidReference = errors.New("invalid reference")
	ErrValidation       = errors.New("validation failed")
	ErrInvalidState     = errors.New("invalid state")
	ErrConflict         = errors.New("conflict")
)
