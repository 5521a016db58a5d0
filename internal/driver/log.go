package driver

import (
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"
)

var logDriver = commonlog.GetLogger("natsu.driver")

// ConfigureLogging sets the global verbosity; path, when non-empty, sends
// log output to a file instead of stderr.
func ConfigureLogging(verbosity int, path string) {
	if path == "" {
		commonlog.Configure(verbosity, nil)
		return
	}
	commonlog.Configure(verbosity, &path)
}
