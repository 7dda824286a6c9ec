package utils

// PanicIfNeeded hands err to the recovery middleware, which renders it as a
// ResponseData envelope.
func PanicIfNeeded(err error) {
	if err != nil {
		panic(err)
	}
}
