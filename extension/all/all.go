// Package all imports all core fermi extensions.
// Import this package to register all built-in commands.
package all

import (
	_ "github.com/jpl-au/fermi/extension/core"
	_ "github.com/jpl-au/fermi/extension/ferment"
	_ "github.com/jpl-au/fermi/extension/query"
	_ "github.com/jpl-au/fermi/extension/transfer"
)
