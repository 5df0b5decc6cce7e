package validation

import "testing"

func TestBasicValidators(t *testing.T) {
	v := Violations{}
	Required("name", "   ", v)
	PositiveFloat("rate", 0, v)
	NonNegativeFloat("hamali_rate", -1, v)
	RangeFloat("discount", 5, 0, 10, v)
	if v["name"] != "required" || v["rate"] != "must_be_positive" || v["hamali_rate"] != "must_not_be_negative" {
		t.Fatalf("unexpected violations %v", v)
	}
	if _, ok := v["discount"]; ok {
		t.Fatalf("discount in range should pass")
	}
}

type itemInput struct {
	Name       string  `json:"name" validate:"required,max=255"`
	Unit       string  `json:"unit"`
	Rate       float64 `json:"rate" validate:"gt=0"`
	HamaliRate float64 `json:"hamali_rate" validate:"gte=0"`
}

func TestStruct(t *testing.T) {
	v := Violations{}
	Struct(itemInput{Rate: 0, HamaliRate: -2}, v)
	want := map[string]string{"name": "required", "rate": "must_be_positive", "hamali_rate": "must_not_be_negative"}
	for field, code := range want {
		if v[field] != code {
			t.Errorf("%s: expected %s got %q", field, code, v[field])
		}
	}

	ok := Violations{}
	Struct(itemInput{Name: "Cement", Rate: 1}, ok)
	if !ok.Empty() {
		t.Fatalf("expected no violations got %v", ok)
	}
}
