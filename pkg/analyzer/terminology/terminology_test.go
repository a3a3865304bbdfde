package terminology

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairlens/fairlens/pkg/models"
)

func TestScanFindsTerms(t *testing.T) {
	scan := Scan("add the host to the whitelist\nremove it from the blacklist")

	assert.Equal(t, models.StatusFail, scan.Status)
	require.Len(t, scan.Findings, 2)
	assert.Equal(t, "whitelist", scan.Findings[0].Term)
	assert.Equal(t, "blacklist", scan.Findings[1].Term)
	assert.Equal(t, 2, scan.TruePositives)
	assert.Equal(t, 2, scan.BySeverity[models.SeverityMedium])
}

func TestScanSuppressesExceptions(t *testing.T) {
	scan := Scan("She earned her master's degree in 2020.")

	assert.Equal(t, models.StatusPass, scan.Status)
	assert.Empty(t, scan.Findings)
	assert.Equal(t, 1, scan.SuppressedCount)
}

func TestScanSeverityRanking(t *testing.T) {
	scan := Scan("the outage crippled the replica")

	require.Len(t, scan.Findings, 1)
	assert.Equal(t, "cripple", scan.Findings[0].Term)
	assert.Equal(t, models.SeverityHigh, scan.Findings[0].Severity)
	assert.Equal(t, 1, scan.BySeverity[models.SeverityHigh])
}

func TestScanLineNumbersAndContext(t *testing.T) {
	scan := Scan("first line is fine\nrun a sanity check here\nlast line")

	require.Len(t, scan.Findings, 1)
	assert.Equal(t, 2, scan.Findings[0].Line)
	assert.Equal(t, "run a sanity check here", scan.Findings[0].Context)
	assert.Contains(t, scan.Findings[0].Recommendation, "validity check")
}

func TestScanDeduplicatesRecommendations(t *testing.T) {
	scan := Scan("whitelist here\nwhitelist there")

	require.Len(t, scan.Findings, 2)
	assert.Len(t, scan.Recommendations, 1)
}

func TestScanCleanText(t *testing.T) {
	scan := Scan("a perfectly ordinary sentence about configuration")

	assert.Equal(t, models.StatusPass, scan.Status)
	assert.Empty(t, scan.Findings)
	assert.Equal(t, 0, scan.TruePositives)
	assert.Equal(t, 0, scan.SuppressedCount)
}

func TestAlternatives(t *testing.T) {
	assert.Contains(t, Alternatives("Master"), "primary")
	assert.Contains(t, Alternatives("whitelist"), "allowlist")
	assert.Nil(t, Alternatives("ordinary"))
}
