package errors

// ErrorCode represents a unique error code for identifying different error types.
type ErrorCode int

const (
	// General errors (1-99)
	ErrCodeUnknown ErrorCode = 1

	// Validation errors (100-199)
	ErrCodeInvalidParameter     ErrorCode = 100
	ErrCodeInvalidConfiguration ErrorCode = 101
	ErrCodeInvalidExecuteOrder  ErrorCode = 102
	ErrCodeInvalidTakeProfit    ErrorCode = 103
	ErrCodeInvalidStopLoss      ErrorCode = 104
	ErrCodeInvalidOrder         ErrorCode = 105
	ErrCodeInsufficientData     ErrorCode = 106
	ErrCodeInvalidType          ErrorCode = 107
	ErrCodeInvalidPeriod        ErrorCode = 108
	ErrCodeMissingParameter     ErrorCode = 109
	ErrCodeInvalidVersion       ErrorCode = 110
	ErrCodeInvalidThreshold     ErrorCode = 112
	ErrCodeInvalidStdDevPeriod  ErrorCode = 113
	ErrCodeInvalidSymbol        ErrorCode = 120
	ErrCodeInvalidDateRange     ErrorCode = 121
	ErrCodeInvalidRequestBody   ErrorCode = 122
	ErrCodeRateLimited          ErrorCode = 130

	// Data/Resource errors (200-299)
	ErrCodeDataNotFound          ErrorCode = 200
	ErrCodeDataSourceUnavailable ErrorCode = 201
	ErrCodeQueryFailed           ErrorCode = 202
	ErrCodeHistoricalDataFailed  ErrorCode = 203
	ErrCodeNoDataFound           ErrorCode = 204
	ErrCodeSimulationNotFound    ErrorCode = 210
	ErrCodePersistenceFailed     ErrorCode = 211

	// Indicator errors (300-399)
	ErrCodeIndicatorNotFound      ErrorCode = 300
	ErrCodeIndicatorAlreadyExists ErrorCode = 301
	ErrCodeIndicatorCalculation   ErrorCode = 302

	// Strategy errors (400-499)
	ErrCodeStrategyNotLoaded    ErrorCode = 400
	ErrCodeStrategyConfigError  ErrorCode = 401
	ErrCodeStrategyRuntimeError ErrorCode = 402
	ErrCodeUnsupportedStrategy  ErrorCode = 403
	ErrCodeVersionMismatch      ErrorCode = 404

	// Trading errors (500-599)
	ErrCodeOrderFailed              ErrorCode = 500
	ErrCodePositionNotFound         ErrorCode = 501
	ErrCodeMarketDataMissing        ErrorCode = 502
	ErrCodeInsufficientBuyingPower  ErrorCode = 503
	ErrCodeInsufficientSellingPower ErrorCode = 504
	ErrCodeOrderNotFound            ErrorCode = 505

	// Backtest errors (600-699)
	ErrCodeBacktestInitFailed  ErrorCode = 601
	ErrCodeBacktestConfigError ErrorCode = 602
	ErrCodeBacktestNoStrategy  ErrorCode = 604
	ErrCodeBacktestNoData      ErrorCode = 606
	ErrCodeBacktestCancelled   ErrorCode = 609

	// Market data errors (700-799)
	ErrCodeMarketDataFetchFailed ErrorCode = 700
	ErrCodeMarketDataWriteFailed ErrorCode = 701
	ErrCodeMarketDataParseFailed ErrorCode = 702
	ErrCodeInvalidTimespan       ErrorCode = 703
	ErrCodeInvalidProvider       ErrorCode = 704
	ErrCodeExchangeUnavailable   ErrorCode = 705
	ErrCodeUnsupportedOperation  ErrorCode = 706

	// Callback and notification errors (800-899)
	ErrCodeCallbackFailed     ErrorCode = 800
	ErrCodeNotificationFailed ErrorCode = 801
	ErrCodePublishFailed      ErrorCode = 802

	// Simulation errors (900-999)
	ErrCodeSimulationError         ErrorCode = 900
	ErrCodeSimulationNotRunning    ErrorCode = 901
	ErrCodeSimulationAlreadyExists ErrorCode = 902
	ErrCodeSimulationLimitReached  ErrorCode = 903
)
