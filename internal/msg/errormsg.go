package msg

// credentials and configuration
const (
	// MissingAPIKey indicates that no API key could be found in any configuration source.
	MissingAPIKey = "no API key set; use --api-key, $HAMMING_API_KEY, a .env file or run 'hammingctl configure'"
	// EmptyAPIKey asks the user to type an API key.
	EmptyAPIKey = "you need to type an API key"
	// InvalidBaseURL indicates a malformed API base URL.
	InvalidBaseURL = "must be an absolute http(s) URL"
	// InvalidTimeoutPolicy indicates an unknown poll timeout policy.
	InvalidTimeoutPolicy = "must be one of 'fail', 'advisory'"
	// InvalidCredentials indicates that the service rejected the API key.
	InvalidCredentials = "invalid credentials provided"
)

// test runs
const (
	// InvalidDirection indicates an unknown call direction.
	InvalidDirection = "invalid direction '%s', must be one of 'outbound', 'inbound'"
	// MissingTestRunID indicates an empty test run ID.
	MissingTestRunID = "no test run ID provided"
	// MissingRunIDInResponse indicates that the service accepted a test run but did not report its ID.
	MissingRunIDInResponse = "the response did not contain a test run ID"
	// InvalidConfigFile indicates a test run configuration file that is neither JSON nor YAML.
	InvalidConfigFile = "unable to parse the test run configuration %s"
	// InvalidNotifyPolicy indicates an unknown slack notification policy.
	InvalidNotifyPolicy = "invalid notification policy '%s', must be one of 'always', 'failure', 'never'"
)

// transport
const (
	// MaxRetriesExceeded indicates that every attempt of a request failed.
	MaxRetriesExceeded = "max retries exceeded"
	// InternalServerError indicates that the service failed to process the request.
	InternalServerError = "internal server error"
	// NotFound indicates that the requested resource does not exist.
	NotFound = "not found"
)
