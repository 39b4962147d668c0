package manifest_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relicta-dev/version-check-api/internal/manifest"
)

func TestParseVersion(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		raw     string
		want    manifest.Version
		wantErr bool
	}{
		{
			name: "triple with build",
			raw:  "1.16.1+1",
			want: manifest.Version{Major: 1, Minor: 16, Patch: 1, Build: 1, Raw: "1.16.1+1"},
		},
		{
			name: "triple without build normalizes to zero",
			raw:  "1.16.1",
			want: manifest.Version{Major: 1, Minor: 16, Patch: 1, Build: 0, Raw: "1.16.1"},
		},
		{
			name: "zero version",
			raw:  "0.0.0",
			want: manifest.Version{Raw: "0.0.0"},
		},
		{
			name: "large build number",
			raw:  "2.0.3+4521",
			want: manifest.Version{Major: 2, Minor: 0, Patch: 3, Build: 4521, Raw: "2.0.3+4521"},
		},
		{
			name: "surrounding whitespace is trimmed",
			raw:  "  1.2.3+4 ",
			want: manifest.Version{Major: 1, Minor: 2, Patch: 3, Build: 4, Raw: "1.2.3+4"},
		},
		{name: "empty", raw: "", wantErr: true},
		{name: "two components", raw: "1.16", wantErr: true},
		{name: "four components", raw: "1.2.3.4", wantErr: true},
		{name: "v prefix", raw: "v1.2.3", wantErr: true},
		{name: "pre-release suffix", raw: "1.2.3-rc1", wantErr: true},
		{name: "non-numeric build", raw: "1.2.3+beta", wantErr: true},
		{name: "missing build after plus", raw: "1.2.3+", wantErr: true},
		{name: "non-numeric component", raw: "1.x.3", wantErr: true},
		{name: "garbage", raw: "latest", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := manifest.ParseVersion(tt.raw)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, manifest.ErrInvalidVersion)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestVersionRoundTrip(t *testing.T) {
	t.Parallel()
	for _, raw := range []string{"1.16.1+1", "0.1.0+0", "10.20.30+40", "3.2.1"} {
		v, err := manifest.ParseVersion(raw)
		require.NoError(t, err)

		again, err := manifest.ParseVersion(v.String())
		require.NoError(t, err)
		assert.Equal(t, 0, v.Compare(again), "round-trip changed ordering for %s", raw)
		assert.Equal(t, v.Core(), again.Core())
		assert.Equal(t, v.Build, again.Build)
	}
}

func TestVersionCompare(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		a    string
		b    string
		want int
	}{
		{name: "equal", a: "1.16.1+1", b: "1.16.1+1", want: 0},
		{name: "build breaks tie", a: "1.16.1+2", b: "1.16.1+1", want: 1},
		{name: "missing build equals build zero", a: "1.16.1", b: "1.16.1+0", want: 0},
		{name: "patch dominates build", a: "1.16.2+0", b: "1.16.1+99", want: 1},
		{name: "minor dominates patch", a: "1.17.0+0", b: "1.16.9+9", want: 1},
		{name: "major dominates everything", a: "2.0.0", b: "1.99.99+99", want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			a, err := manifest.ParseVersion(tt.a)
			require.NoError(t, err)
			b, err := manifest.ParseVersion(tt.b)
			require.NoError(t, err)

			assert.Equal(t, tt.want, a.Compare(b))
			assert.Equal(t, -tt.want, b.Compare(a))
			assert.Equal(t, tt.want > 0, a.IsNewerThan(b))
		})
	}
}

// Exactly one of a<b, a==b, a>b must hold for every pair.
func TestVersionCompareTotalOrder(t *testing.T) {
	t.Parallel()
	raws := []string{"0.0.0", "0.0.1", "0.1.0", "1.0.0", "1.0.0+1", "1.0.1", "1.16.1+1", "1.16.1+2", "2.0.0"}

	parsed := make([]manifest.Version, len(raws))
	for i, raw := range raws {
		v, err := manifest.ParseVersion(raw)
		require.NoError(t, err)
		parsed[i] = v
	}

	for i, a := range parsed {
		for j, b := range parsed {
			cmp := a.Compare(b)
			switch {
			case i == j:
				assert.Equal(t, 0, cmp)
			case i < j:
				assert.Equal(t, -1, cmp, "%s vs %s", a.Raw, b.Raw)
			default:
				assert.Equal(t, 1, cmp, "%s vs %s", a.Raw, b.Raw)
			}
		}
	}
}
