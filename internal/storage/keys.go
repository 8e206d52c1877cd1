// internal/storage/keys.go
package storage

// Well-known keys. Handoff keys carry freshly produced analyses across
// a single navigation; session keys back recovery after ordinary
// restarts.
const (
	// Handoff scope.
	KeyFreshAnalysis    = "lastAnalysis"     // just-produced analysis, consumed by the results view
	KeySelectedAnalysis = "selectedAnalysis" // history row picked for re-viewing

	// Session scope.
	KeyRecentAnalysis  = "latestAnalysis"
	KeyResumeText      = "lastResumeText"
	KeyJobDescription  = "lastJobDescription"
	KeyMissingKeywords = "missingKeywords"
	KeyOptimizedResume = "optimizedResume"
	KeyAccessToken     = "access_token"
)
