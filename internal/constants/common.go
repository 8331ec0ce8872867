package constants

// Common string constants used throughout the codebase
const (
	// Log levels
	ErrorLevel = "error"

	// Environments
	ProdEnvironment  = "prod"
	DevEnvironment   = "dev"
	LocalEnvironment = "local"
	TestEnvironment  = "test"

	// Service name attached to structured logs
	ServiceName = "cyphera-xdk"

	// Headers
	CorrelationIDHeader = "X-Correlation-ID"
	CorrelationIDKey    = "correlation_id"

	// Message attributes on published transactions
	TxIDAttribute     = "TxID"
	ChainAttribute    = "Chain"
	TxHashAttribute   = "TxHash"
	MessageSourceAttr = "Source"
)
