package location

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		address string
		want    string
	}{
		{address: "г. Минск, ул. Ленина 1", want: "Минск"},
		{address: "Брестская область, д. Ивановка", want: "Брестская область"},
		{address: "", want: LabelAddressUndetermined},
		{address: "   ", want: LabelUndetermined},
		{address: "Москва", want: LabelUndetermined},
		{address: "Moscow", want: LabelUndetermined},
		{address: "ул. Ленина, г. Минск, Минская область", want: "Минск"},
		{address: "Брестская область, дер. Ивановка", want: "Брестская область"},
		{address: "Минская область, г. Борисов", want: "Минская область"},
		{address: "Гомельская область, г. Гомель", want: "Гомель"},
		{address: "г. Брест, ул. Советская", want: "Брест"},
		{address: "Могилёвская область, Кличевский район", want: "Могилёвская область"},
		{address: "Гродно", want: "Гродно"},
	}

	for _, tt := range tests {
		t.Run(tt.address, func(t *testing.T) {
			assert.Equal(t, tt.want, Resolve(tt.address))
		})
	}
}

func TestFindRegionFirstMatchWins(t *testing.T) {
	assert.Equal(t, "Брестская", FindRegion("Минская и Брестская"))
	assert.Equal(t, "", FindRegion("г. Минск"))
}

func TestFindCityWholeWord(t *testing.T) {
	assert.Equal(t, "", FindCity("Брестская область"))
	assert.Equal(t, "", FindCity("Минская область"))
	assert.Equal(t, "Минск", FindCity("Минская область, г.Минск"))
	assert.Equal(t, "Минск", FindCity("Витебск и Минск"))
	assert.Equal(t, "Гомель", FindCity("(Гомель)"))
}
