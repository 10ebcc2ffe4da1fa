package codec

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type launchArgs struct {
	Program string   `json:"program"`
	Args    []string `json:"args,omitempty"`
	NoDebug *bool    `json:"noDebug,omitempty"`
}

func TestValidator(t *testing.T) {
	v, err := NewValidator[launchArgs]()
	require.NoError(t, err)
	require.NotNil(t, v.Schema())

	for _, c := range codecs() {
		t.Run(c.Name(), func(t *testing.T) {
			valid, err := c.Marshal(map[string]any{"program": "a.out", "args": []string{"-v"}})
			require.NoError(t, err)
			require.NoError(t, v.Validate(c, valid))

			missing, err := c.Marshal(map[string]any{"args": []string{"-v"}})
			require.NoError(t, err)
			require.Error(t, v.Validate(c, missing))

			wrongType, err := c.Marshal(map[string]any{"program": 12})
			require.NoError(t, err)
			require.Error(t, v.Validate(c, wrongType))
		})
	}
}
