package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveNamespace(t *testing.T) {
	tests := []struct {
		name    string
		root    string
		marker  string
		want    string
		wantErr error
	}{
		{name: "trailing slash", root: "/proj/Assets/Nighthollow/World/Data/", want: "Nighthollow.World.Data"},
		{name: "no trailing slash", root: "/proj/Assets/Nighthollow/Data", want: "Nighthollow.Data"},
		{name: "windows separators", root: `C:\proj\Assets\Nighthollow\Rules\Effects`, want: "Nighthollow.Rules.Effects"},
		{name: "duplicate separators", root: "/proj/Assets/Nighthollow//Triggers/", want: "Nighthollow.Triggers"},
		{name: "first marker wins", root: "/a/Assets/B/Assets/C", want: "B.Assets.C"},
		{name: "custom marker", root: "/repo/src/Game/Model", marker: "/src/", want: "Game.Model"},
		{name: "missing marker", root: "/proj/Scripts/Data", wantErr: ErrNamespaceMarker},
		{name: "marker at end", root: "/proj/Assets/", wantErr: ErrEmptyNamespace},
		{name: "marker at end without slash", root: "/proj/Assets", wantErr: ErrEmptyNamespace},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DeriveNamespace(tt.root, tt.marker)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
