package asset

import "fmt"

type ErrorCode string

const (
	CODEC_ERR_TRUNCATED        ErrorCode = "CODEC_ERR_TRUNCATED"
	CODEC_ERR_BAD_MAGIC        ErrorCode = "CODEC_ERR_BAD_MAGIC"
	CODEC_ERR_RESERVED_BITS    ErrorCode = "CODEC_ERR_RESERVED_BITS"
	CODEC_ERR_INVALID_UTF8     ErrorCode = "CODEC_ERR_INVALID_UTF8"
	CODEC_ERR_UNKNOWN_TYPE_TAG ErrorCode = "CODEC_ERR_UNKNOWN_TYPE_TAG"
	CODEC_ERR_AMOUNT_OVERFLOW  ErrorCode = "CODEC_ERR_AMOUNT_OVERFLOW"

	TX_ERR_OUTPUT_INDEX_OUT_OF_BOUNDS ErrorCode = "TX_ERR_OUTPUT_INDEX_OUT_OF_BOUNDS"
	TX_ERR_INPUT_INDEX_OUT_OF_BOUNDS  ErrorCode = "TX_ERR_INPUT_INDEX_OUT_OF_BOUNDS"
	TX_ERR_ZERO_AMOUNT                ErrorCode = "TX_ERR_ZERO_AMOUNT"
	TX_ERR_SELF_REFERENTIAL_CONTROL   ErrorCode = "TX_ERR_SELF_REFERENTIAL_CONTROL"
	TX_ERR_MISSING_GROUP_REF          ErrorCode = "TX_ERR_MISSING_GROUP_REF"
	TX_ERR_DUPLICATE_ASSET_IN_TX      ErrorCode = "TX_ERR_DUPLICATE_ASSET_IN_TX"
	TX_ERR_DUPLICATE_OUTPUT_IN_GROUP  ErrorCode = "TX_ERR_DUPLICATE_OUTPUT_IN_GROUP"
	TX_ERR_ISSUANCE_ON_EXISTING       ErrorCode = "TX_ERR_ISSUANCE_ON_EXISTING"
	TX_ERR_CONTROL_ASSET_MISSING      ErrorCode = "TX_ERR_CONTROL_ASSET_MISSING"

	TX_ERR_PARTIAL_INPUT_CONSUMPTION ErrorCode = "TX_ERR_PARTIAL_INPUT_CONSUMPTION"
	TX_ERR_INPUT_EXCEEDS_STORED      ErrorCode = "TX_ERR_INPUT_EXCEEDS_STORED"

	TX_ERR_MINT_WITHOUT_CONTROL         ErrorCode = "TX_ERR_MINT_WITHOUT_CONTROL"
	TX_ERR_CONTROL_NOT_RETAINED         ErrorCode = "TX_ERR_CONTROL_NOT_RETAINED"
	TX_ERR_METADATA_UPDATE_UNAUTHORIZED ErrorCode = "TX_ERR_METADATA_UPDATE_UNAUTHORIZED"
	TX_ERR_METADATA_UPDATE_ON_IMMUTABLE ErrorCode = "TX_ERR_METADATA_UPDATE_ON_IMMUTABLE"

	BLOCK_ERR_HEIGHT_GAP       ErrorCode = "BLOCK_ERR_HEIGHT_GAP"
	BLOCK_ERR_DEPENDENCY_CYCLE ErrorCode = "BLOCK_ERR_DEPENDENCY_CYCLE"

	STORE_ERR_SNAPSHOT_MISSING ErrorCode = "STORE_ERR_SNAPSHOT_MISSING"
)

type Error struct {
	Code ErrorCode
	Msg  string
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Msg == "" {
		return string(e.Code)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Msg)
}

func aerr(code ErrorCode, msg string) error {
	return &Error{Code: code, Msg: msg}
}

func aerrf(code ErrorCode, format string, args ...any) error {
	return &Error{Code: code, Msg: fmt.Sprintf(format, args...)}
}

// Errorf builds an *Error for packages layered on the codec.
func Errorf(code ErrorCode, format string, args ...any) error {
	return &Error{Code: code, Msg: fmt.Sprintf(format, args...)}
}

// CodeOf extracts the ErrorCode from err, or "" if err is not an *Error.
func CodeOf(err error) ErrorCode {
	if e, ok := err.(*Error); ok && e != nil {
		return e.Code
	}
	return ""
}
