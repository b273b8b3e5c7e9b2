package ir

import "testing"

func TestPromotionCost(t *testing.T) {
	tests := []struct {
		from, to DataType
		cost     int
		ok       bool
	}{
		{TypeScalar, TypeScalar, 0, true},
		{TypeInteger, TypeScalar, 1, true},
		{TypeInteger, TypeVector3, 3, true},
		{TypeInteger, TypeColor4, 3, true},
		{TypeScalar, TypeVector3, 2, true},
		{TypeScalar, TypeColor4, 2, true},
		{TypeVector3, TypeColor4, 1, true},
		{TypeScalar, TypeInteger, 0, false},
		{TypeVector3, TypeScalar, 0, false},
		{TypeBoolean, TypeScalar, 0, false},
		{TypeScalar, TypeBoolean, 0, false},
		{TypeUnknown, TypeScalar, 0, false},
		{TypeScalar, TypeUnknown, 0, false},
	}

	for _, tt := range tests {
		cost, ok := PromotionCost(tt.from, tt.to)
		if ok != tt.ok || cost != tt.cost {
			t.Errorf("PromotionCost(%s, %s) = (%d, %v), want (%d, %v)",
				tt.from, tt.to, cost, ok, tt.cost, tt.ok)
		}
	}
}

func TestDataTypeString(t *testing.T) {
	tests := []struct {
		t    DataType
		want string
	}{
		{TypeUnknown, "Unknown"},
		{TypeBoolean, "Boolean"},
		{TypeInteger, "Integer"},
		{TypeScalar, "Scalar"},
		{TypeVector3, "Vector3"},
		{TypeColor4, "Color4"},
	}
	for _, tt := range tests {
		if got := tt.t.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}
