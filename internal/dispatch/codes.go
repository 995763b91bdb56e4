package dispatch

import (
	xerrors "EconAgent/internal/errors"
)

const (
	CodeNotInitialized         xerrors.Code = "NOT_INITIALIZED"
	CodeInvalidTransaction     xerrors.Code = "INVALID_TRANSACTION"
	CodeInvalidTransactionType xerrors.Code = "INVALID_TRANSACTION_TYPE"
	CodeInsufficientBalance    xerrors.Code = "INSUFFICIENT_BALANCE"
	CodeSignFailure            xerrors.Code = "SIGN_FAILURE"
	CodeUnknownOperation       xerrors.Code = "UNKNOWN_OPERATION"
)

func init() {
	xerrors.Register(CodeNotInitialized, xerrors.Attributes{
		Message:  "agent not initialized",
		Severity: xerrors.SeverityInfo,
	})
	xerrors.Register(CodeInvalidTransaction, xerrors.Attributes{
		Message:  "invalid transaction data",
		Severity: xerrors.SeverityInfo,
	})
	xerrors.Register(CodeInvalidTransactionType, xerrors.Attributes{
		Message:  "invalid transaction type",
		Severity: xerrors.SeverityInfo,
	})
	xerrors.Register(CodeInsufficientBalance, xerrors.Attributes{
		Message:  "insufficient balance",
		Severity: xerrors.SeverityWarning,
	})
	xerrors.Register(CodeSignFailure, xerrors.Attributes{
		Message:  "failed to sign transaction",
		Severity: xerrors.SeverityWarning,
	})
	xerrors.Register(CodeUnknownOperation, xerrors.Attributes{
		Message:  "unknown operation",
		Severity: xerrors.SeverityInfo,
	})
}
