package deployments

import "errors"

var (
	ErrNotFound            = errors.New("deployment not found")
	ErrPredictNotSupported = errors.New("prediction is not supported: this target only transfers files; run inference on the device itself")
)
