package codes

// Process exit codes
const (
	Success       = 0
	GeneralError  = 1
	ConfigError   = 2
	InputError    = 3
	Proceed       = 10
	CommandNotRun = 127
)

// ErrorCodes maps buildcache exit codes to their descriptions
var ErrorCodes = map[int]string{
	Success:       "Success",
	GeneralError:  "General failure",
	ConfigError:   "Invalid configuration",
	InputError:    "Cannot read build inputs",
	Proceed:       "Build required",
	CommandNotRun: "Build command not found",
}

// GetErrorMessage returns the message for a given exit code. Codes outside
// the table are passed through from the wrapped build command.
func GetErrorMessage(code int) string {
	if msg, ok := ErrorCodes[code]; ok {
		return msg
	}

	return "Build command failed"
}
