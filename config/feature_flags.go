package config

import (
	"os"
	"strconv"
	"strings"
	"sync"
)

// FeatureFlags manages feature toggles. The ledger runs at a single front
// desk, so flags are simple on/off switches loaded from the environment -
// no per-user rollout machinery.
type FeatureFlags struct {
	mu       sync.RWMutex
	features map[string]*Feature
}

// Feature represents a single feature flag.
type Feature struct {
	Name        string
	Description string
	Enabled     bool
}

// Predefined feature flag names.
const (
	// === Document Features ===
	FeatureDocumentsReceipts = "documents.receipts" // PDF receipt per payment
	FeatureDocumentsLetters  = "documents.letters"  // Admission letter per registration
	FeatureDocumentsExports  = "documents.exports"  // Excel roster/ledger exports

	// === Notification Features ===
	FeatureNotifyPaymentReminders = "notify.payment_reminders" // Daily reminder sweep
	FeatureNotifyRegistrations    = "notify.registrations"     // Front-office registration notices

	// === Reporting Features ===
	FeatureReportsCache = "reports.cache" // Redis cache-aside for report queries
)

// LoadFeatureFlags loads feature flags from environment variables.
func LoadFeatureFlags() *FeatureFlags {
	ff := &FeatureFlags{
		features: make(map[string]*Feature),
	}

	ff.initializeDefaults()
	ff.loadFromEnvironment()

	return ff
}

// initializeDefaults sets up all features with default values.
func (ff *FeatureFlags) initializeDefaults() {
	ff.features[FeatureDocumentsReceipts] = &Feature{
		Name:        FeatureDocumentsReceipts,
		Description: "Generate a PDF receipt for every recorded payment",
		Enabled:     true,
	}

	ff.features[FeatureDocumentsLetters] = &Feature{
		Name:        FeatureDocumentsLetters,
		Description: "Generate an admission letter on registration",
		Enabled:     true,
	}

	ff.features[FeatureDocumentsExports] = &Feature{
		Name:        FeatureDocumentsExports,
		Description: "Excel exports of students and payments",
		Enabled:     true,
	}

	ff.features[FeatureNotifyPaymentReminders] = &Feature{
		Name:        FeatureNotifyPaymentReminders,
		Description: "Daily payment reminder sweep",
		Enabled:     true,
	}

	ff.features[FeatureNotifyRegistrations] = &Feature{
		Name:        FeatureNotifyRegistrations,
		Description: "Front-office notice for each new registration",
		Enabled:     true,
	}

	ff.features[FeatureReportsCache] = &Feature{
		Name:        FeatureReportsCache,
		Description: "Cache report queries in Redis",
		Enabled:     true,
	}
}

// loadFromEnvironment loads feature flag overrides from env vars.
// Format: FEATURE_<NAME>=true|false
// Example: FEATURE_DOCUMENTS_LETTERS=false
func (ff *FeatureFlags) loadFromEnvironment() {
	for name, feature := range ff.features {
		envKey := featureNameToEnvKey(name)
		if val := os.Getenv(envKey); val != "" {
			if b, err := strconv.ParseBool(val); err == nil {
				feature.Enabled = b
			}
		}
	}
}

// featureNameToEnvKey converts feature name to environment variable key.
// "documents.receipts" -> "FEATURE_DOCUMENTS_RECEIPTS"
func featureNameToEnvKey(name string) string {
	key := strings.ToUpper(name)
	key = strings.ReplaceAll(key, ".", "_")
	return "FEATURE_" + key
}

// IsEnabled checks if a feature is enabled.
func (ff *FeatureFlags) IsEnabled(featureName string) bool {
	ff.mu.RLock()
	defer ff.mu.RUnlock()

	feature, ok := ff.features[featureName]
	if !ok {
		return false
	}
	return feature.Enabled
}

// EnableFeature enables a feature.
func (ff *FeatureFlags) EnableFeature(featureName string) error {
	return ff.set(featureName, true)
}

// DisableFeature disables a feature.
func (ff *FeatureFlags) DisableFeature(featureName string) error {
	return ff.set(featureName, false)
}

func (ff *FeatureFlags) set(featureName string, enabled bool) error {
	ff.mu.Lock()
	defer ff.mu.Unlock()

	feature, ok := ff.features[featureName]
	if !ok {
		return ErrFeatureNotFound
	}
	feature.Enabled = enabled
	return nil
}

// GetAllFeatures returns a copy of all feature configurations.
func (ff *FeatureFlags) GetAllFeatures() map[string]*Feature {
	ff.mu.RLock()
	defer ff.mu.RUnlock()

	result := make(map[string]*Feature, len(ff.features))
	for k, v := range ff.features {
		featureCopy := *v
		result[k] = &featureCopy
	}
	return result
}

// --- Errors ---

// ErrFeatureNotFound is returned when a feature name is unknown.
var ErrFeatureNotFound = &FeatureFlagError{Message: "feature not found"}

// FeatureFlagError represents a feature flag error.
type FeatureFlagError struct {
	Message string
}

func (e *FeatureFlagError) Error() string {
	return e.Message
}
