package errors

import "net/http"

// HTTPStatus maps an error to the HTTP status code the API responds with.
// Errors without a code are treated as internal errors.
func HTTPStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}

	code := GetCode(err)

	switch code {
	case ErrCodeDataNotFound, ErrCodeNoDataFound, ErrCodeSimulationNotFound,
		ErrCodePositionNotFound, ErrCodeOrderNotFound, ErrCodeIndicatorNotFound:
		return http.StatusNotFound
	case ErrCodeSimulationNotRunning, ErrCodeSimulationAlreadyExists:
		return http.StatusConflict
	case ErrCodeSimulationLimitReached, ErrCodeRateLimited:
		return http.StatusTooManyRequests
	case ErrCodeUnsupportedStrategy, ErrCodeStrategyConfigError, ErrCodeInvalidProvider,
		ErrCodeInvalidTimespan, ErrCodeUnsupportedOperation, ErrCodeBacktestNoData:
		return http.StatusBadRequest
	case ErrCodeMarketDataFetchFailed, ErrCodeMarketDataParseFailed, ErrCodeExchangeUnavailable:
		return http.StatusBadGateway
	case ErrCodeDataSourceUnavailable:
		return http.StatusServiceUnavailable
	}

	if code >= 100 && code < 200 {
		return http.StatusBadRequest
	}

	return http.StatusInternalServerError
}
