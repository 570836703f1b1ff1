// flags.go defines constants for all CLI flag names.
//
// Using constants instead of string literals prevents typos between
// Flags().Type() definitions and GetType() calls.
//
// Naming convention: Flag<PascalCaseName> where name matches the kebab-case
// CLI flag (e.g., "dry-run" -> FlagDryRun).

package extension

// Flag name constants for CLI commands.
const (
	// Boolean flags

	FlagDiff          = "diff"           // Show diff output
	FlagDryRun        = "dry-run"        // Preview without making changes
	FlagForce         = "force"          // Skip confirmations, overwrite files
	FlagIncludeHidden = "include-hidden" // Include hidden files/directories
	FlagLocal         = "local"          // Use local config scope
	FlagLong          = "long"           // Long format output
	FlagRaw           = "raw"            // Raw output without rendering
	FlagReplace       = "replace"        // Overwrite existing records on import
	FlagReverse       = "reverse"        // Reverse sort order
	FlagUnset         = "unset"          // Remove a config key

	// String flags

	FlagContainer  = "container"  // Container name
	FlagDate       = "date"       // Civil date YYYY-MM-DD
	FlagEnd        = "end"        // End date
	FlagFor        = "for"        // Fermentation length (10d, 3w, 2m)
	FlagFormat     = "format"     // Export format (yaml, json)
	FlagFromJSON   = "from-json"  // Read a record from a JSON file or "-"
	FlagIngredient = "ingredient" // name:quantity:unit, repeatable
	FlagName       = "name"       // Record name
	FlagNotes      = "notes"      // Free-form notes
	FlagReason     = "reason"     // Failure reason
	FlagSlots      = "slots"      // Backup slot range for diff (e.g., 2:1)
	FlagSearch     = "search"     // Free-text filter
	FlagSort       = "sort"       // Sort field
	FlagStart      = "start"      // Start date
	FlagState      = "state"      // State filter
	FlagWhere      = "where"      // Expression filter

	// Integer flags

	FlagAppearance = "appearance" // Appearance stars
	FlagAroma      = "aroma"      // Aroma stars
	FlagBackup     = "backup"     // Backup slot number
	FlagLimit      = "limit"      // Limit number of results
	FlagOverall    = "overall"    // Overall stars
	FlagTaste      = "taste"      // Taste stars
	FlagTexture    = "texture"    // Texture stars
)
