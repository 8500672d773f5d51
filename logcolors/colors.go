package logcolors

// ANSI color codes for log prefixes
const (
	Reset  = "\033[0m"
	Green  = "\033[32m"
	Blue   = "\033[34m"
	Purple = "\033[35m"
	Cyan   = "\033[36m"

	// Bright variants for more color variety
	BrightGreen   = "\033[92m"
	BrightBlue    = "\033[94m"
	BrightMagenta = "\033[95m"
	BrightCyan    = "\033[96m"
)

// Upstream provider log prefixes
const (
	LogAnalysis = Green + "[Analysis]" + Reset
	LogPlaylist = BrightMagenta + "[Playlist]" + Reset
	LogSearch   = Cyan + "[Search]" + Reset
	LogAuth     = BrightBlue + "[Auth]" + Reset
	LogHealth   = Blue + "[Health]" + Reset
)

// Cache-related log prefixes
const (
	LogCacheInit     = Blue + "[Cache:Init]" + Reset
	LogCache         = Blue + "[Cache]" + Reset
	LogCacheBackup   = Blue + "[Cache:Backup]" + Reset
	LogCacheClear    = Blue + "[Cache:Clear]" + Reset
	LogCacheAnalysis = Green + "[Cache:Analysis]" + Reset
)

// Rate limiting log prefixes
const (
	LogRateLimit = Purple + "[RateLimit]" + Reset
	LogAPIKey    = Purple + "[APIKey]" + Reset
)
