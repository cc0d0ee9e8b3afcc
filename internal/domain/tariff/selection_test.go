package tariff

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func configAt(t *testing.T, fixed string, from time.Time, active bool) TariffConfig {
	t.Helper()
	cfg, err := NewTariffConfig(d(fixed), d("20"), d("1500"), d("3000"), from)
	require.NoError(t, err)
	cfg.Active = active
	return *cfg
}

func TestSelectEffective(t *testing.T) {
	jan := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	jun := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	dec := time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC)

	configs := []TariffConfig{
		configAt(t, "4000", jan, true),
		configAt(t, "5000", jun, true),
		configAt(t, "6000", dec, true),
		configAt(t, "9999", jun.Add(24*time.Hour), false),
	}

	tests := []struct {
		name  string
		at    time.Time
		fixed string
	}{
		{"before june picks january", jun.Add(-time.Hour), "4000"},
		{"on the effective date", jun, "5000"},
		{"inactive rows are ignored", jun.Add(48 * time.Hour), "5000"},
		{"latest wins", dec.Add(time.Hour), "6000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SelectEffective(configs, tt.at)
			require.NoError(t, err)
			assert.True(t, d(tt.fixed).Equal(got.FixedCharge))
		})
	}
}

func TestSelectEffective_NoneQualifies(t *testing.T) {
	jun := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	_, err := SelectEffective(nil, jun)
	assert.True(t, errors.Is(err, ErrNoActiveTariff))

	_, err = SelectEffective([]TariffConfig{configAt(t, "1", jun, true)}, jun.Add(-time.Second))
	assert.True(t, errors.Is(err, ErrInvalidTariffConfig))
}

func TestSelectEffective_TieGoesToNewest(t *testing.T) {
	jun := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	older := configAt(t, "1000", jun, true)
	newer := configAt(t, "2000", jun, true)
	newer.CreatedAt = older.CreatedAt.Add(time.Minute)

	got, err := SelectEffective([]TariffConfig{newer, older}, jun)
	require.NoError(t, err)
	assert.True(t, d("2000").Equal(got.FixedCharge))
}
