package formats

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	remaperrors "mcremap/internal/errors"
)

func TestTypeOf(t *testing.T) {
	tests := []struct {
		entry string
		want  LogicalType
		ok    bool
	}{
		{"mappings/mappings.tiny", Tiny, true},
		{"mappings.tiny", Tiny, true},
		{"conf\\joined.srg", SRGJoined, true},
		{"config/joined.tsrg", TSRG, true},
		{"conf/minecraft_server.rgs", RGSServer, true},
		{"conf/minecraft.rgs", RGSClient, true},
		{"foo-mappings.tiny", 0, false},
		{"conf/methods.csv.bak", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.entry, func(t *testing.T) {
			got, ok := TypeOf(tt.entry)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestDetect(t *testing.T) {
	tests := []struct {
		name    string
		entries []string
		want    string
	}{
		{"tiny jar", []string{"META-INF/MANIFEST.MF", "mappings/mappings.tiny"}, "tiny-jar"},
		{"tsrg only", []string{"config/joined.tsrg"}, "new-mcpconfig"},
		{"tsrg wins over tiny", []string{"mappings.tiny", "config/joined.tsrg"}, "new-mcpconfig"},
		{"joined srg", []string{"conf\\joined.srg"}, "mcpconfig"},
		{"forge csvs", []string{"methods.csv", "fields.csv", "params.csv"}, "newforge-mcp"},
		{"mcp with srgs", []string{"conf/client.srg", "conf/server.srg", "conf/methods.csv", "conf/fields.csv"}, "mcp"},
		{"old mcp", []string{"conf/methods.csv", "conf/fields.csv", "conf/classes.csv"}, "old-mcp"},
		{"older mcp", []string{"conf/minecraft.rgs", "conf/methods.csv", "conf/fields.csv", "conf/classes.csv"}, "older-mcp"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Detect(tt.entries)
			require.NoError(t, err)
			assert.Equal(t, tt.want, p.Name)
		})
	}
}

func TestDetect_Unrecognized(t *testing.T) {
	_, err := Detect([]string{"readme.txt", "conf/minecraft_server.rgs"})
	require.Error(t, err)
	assert.True(t, remaperrors.HasCode(err, remaperrors.UnrecognizedFormat))
}

func TestDetect_OrderIndependent(t *testing.T) {
	entries := []string{"conf/minecraft.rgs", "conf/methods.csv", "conf/fields.csv", "conf/classes.csv", "a.txt"}
	want, err := Detect(entries)
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 20; i++ {
		shuffled := append([]string(nil), entries...)
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })
		got, err := Detect(shuffled)
		require.NoError(t, err)
		assert.Equal(t, want.Name, got.Name)
	}
}

func TestProfiles_Table(t *testing.T) {
	ps := Profiles()
	require.Len(t, ps, 7)
	assert.Equal(t, "tiny-jar", ps[0].Name)
	assert.Equal(t, "older-mcp", ps[6].Name)

	older, ok := ProfileByName("older-mcp")
	require.True(t, ok)
	assert.True(t, older.Ignores(MCPClasses))
	assert.Equal(t, []LogicalType{RGSClient}, older.Contains())

	_, ok = ProfileByName("yarn")
	assert.False(t, ok)
}

func TestPresent(t *testing.T) {
	got := Present([]string{"fields.csv", "joined.tsrg", "nothing"})
	assert.Equal(t, []LogicalType{TSRG, MCPFields}, got)
}
