package payments

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeMpesaNumber(t *testing.T) {
	cases := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{"0712345678", "254712345678", false},
		{"0112345678", "254112345678", false},
		{"712345678", "254712345678", false},
		{"112345678", "254112345678", false},
		{"254712345678", "254712345678", false},
		{"+254 712 345 678", "254712345678", false},
		{"0712-345-678", "254712345678", false},
		{"12345", "", true},
		{"0812345678", "", true},
		{"", "", true},
	}

	for _, tc := range cases {
		t.Run(tc.input, func(t *testing.T) {
			got, err := SanitizeMpesaNumber(tc.input)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestReferenceFromInvoice(t *testing.T) {
	assert.Equal(t, "EH-MMO-A1B2C3D4E5F6", ReferenceFromInvoice("553344-EH-MMO-A1B2C3D4E5F6"))
	assert.Equal(t, "NODASH", ReferenceFromInvoice("NODASH"))
}
