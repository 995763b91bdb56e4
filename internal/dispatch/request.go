package dispatch

import (
	xerrors "EconAgent/internal/errors"
)

// Operation 枚举调度器支持的全部操作。
type Operation string

const (
	OpCreate          Operation = "create"
	OpAddTransaction  Operation = "add_transaction"
	OpTokenBalance    Operation = "get_token_balance"
	OpPortfolioValue  Operation = "get_portfolio_value"
	OpSignTransaction Operation = "sign_transaction"
)

// Request 是与传输无关的请求边界对象。
// CallerKey 由宿主运行时提供，仅用于定位调用方专属的 Agent。
type Request struct {
	Operation Operation      `json:"operation"`
	Arguments map[string]any `json:"arguments"`
	CallerKey string         `json:"caller_key"`
}

// Envelope 是所有操作统一的响应包：
// {status: success|error, ...操作字段, message/code 仅在出错时出现}。
type Envelope map[string]any

// Status 返回响应状态。
func (e Envelope) Status() string {
	status, _ := e["status"].(string)
	return status
}

// Code 返回错误码，成功响应为空。
func (e Envelope) Code() xerrors.Code {
	code, _ := e["code"].(string)
	return xerrors.Code(code)
}

// success 构造成功响应。status 写在最后，操作字段不允许覆盖它。
func success(fields map[string]any) Envelope {
	env := Envelope{}
	for key, value := range fields {
		env[key] = value
	}
	env["status"] = "success"
	return env
}

func failure(err error, fields map[string]any) Envelope {
	env := Envelope{}
	for key, value := range fields {
		env[key] = value
	}
	env["status"] = "error"
	if e, ok := xerrors.From(err); ok {
		env["message"] = e.Message()
		env["code"] = string(e.Code())
	} else if err != nil {
		env["message"] = err.Error()
		env["code"] = string(xerrors.CodeInternal)
	}
	return env
}
