package report

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"rental-harvester/config"
	"rental-harvester/services/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate(t *testing.T) {
	s, err := store.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	defer s.Close()

	gardens := config.Area{Province: "western-cape", City: "cape-town", Area: "gardens"}
	seaPoint := config.Area{Province: "western-cape", City: "cape-town", Area: "sea-point"}

	_, err = s.Upsert(&store.Listing{ID: "A1", Price: "R 10 000"}, gardens)
	require.NoError(t, err)
	_, err = s.Upsert(&store.Listing{ID: "A2", Price: "R 12 000"}, gardens)
	require.NoError(t, err)
	_, err = s.Upsert(&store.Listing{ID: "B1", Price: "Price on application"}, seaPoint)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "weekly_summary.csv")

	summaries, err := NewReporter(s).Generate(path)
	require.NoError(t, err)
	require.Len(t, summaries, 2)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, []string{"area", "listings", "avg_rent"}, rows[0])
	assert.Equal(t, []string{"gardens", "2", "11000"}, rows[1])
	// No parseable rent in the area leaves the average empty
	assert.Equal(t, []string{"sea-point", "1", ""}, rows[2])
}

func TestSendSummaryRequiresConfiguration(t *testing.T) {
	err := SendSummary(EmailSettings{}, "subject", "nowhere.csv")
	assert.Error(t, err)

	err = SendSummary(EmailSettings{Host: "smtp.example.com"}, "subject", "nowhere.csv")
	assert.Error(t, err)
}
