package order

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeliveryInfo_Validate(t *testing.T) {
	t.Run("Valid", func(t *testing.T) {
		assert.NoError(t, DeliveryInfo{Name: "A", Phone: "1", Address: "X"}.Validate())
	})

	t.Run("WhitespaceOnly", func(t *testing.T) {
		err := DeliveryInfo{Name: "  ", Phone: "1", Address: "\t"}.Validate()
		assert.ErrorIs(t, err, ErrNameRequired)
		assert.ErrorIs(t, err, ErrAddressRequired)
		assert.NotErrorIs(t, err, ErrPhoneRequired)
	})

	t.Run("AllMissing", func(t *testing.T) {
		err := DeliveryInfo{Notes: "leave at gate"}.Validate()
		assert.ErrorIs(t, err, ErrNameRequired)
		assert.ErrorIs(t, err, ErrPhoneRequired)
		assert.ErrorIs(t, err, ErrAddressRequired)
	})
}

func TestDeliveryInfo_Normalize(t *testing.T) {
	got := DeliveryInfo{Name: " Ana ", Phone: " 0917 ", Address: " Farm Rd ", Notes: " ring "}.Normalize()
	assert.Equal(t, DeliveryInfo{Name: "Ana", Phone: "0917", Address: "Farm Rd", Notes: "ring"}, got)
}
