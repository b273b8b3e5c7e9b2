package ir

// DataType identifies the value type carried by a socket.
type DataType uint8

const (
	TypeUnknown DataType = iota
	TypeBoolean
	TypeInteger
	TypeScalar
	TypeVector3
	TypeColor4
)

// String returns the display name of the type.
func (t DataType) String() string {
	switch t {
	case TypeBoolean:
		return "Boolean"
	case TypeInteger:
		return "Integer"
	case TypeScalar:
		return "Scalar"
	case TypeVector3:
		return "Vector3"
	case TypeColor4:
		return "Color4"
	default:
		return "Unknown"
	}
}

// promotionCosts encodes the directed promotion lattice. A missing
// entry means no implicit conversion exists. Boolean never promotes
// and nothing promotes to Boolean.
var promotionCosts = map[[2]DataType]int{
	{TypeInteger, TypeScalar}:  1,
	{TypeInteger, TypeVector3}: 3,
	{TypeInteger, TypeColor4}:  3,
	{TypeScalar, TypeVector3}:  2,
	{TypeScalar, TypeColor4}:   2,
	{TypeVector3, TypeColor4}:  1,
}

// PromotionCost returns the cost of implicitly converting from one
// type to another. Converting a type to itself costs zero. ok reports
// whether the conversion exists at all.
func PromotionCost(from, to DataType) (cost int, ok bool) {
	if from == to {
		return 0, true
	}
	if from == TypeUnknown || to == TypeUnknown {
		return 0, false
	}
	cost, ok = promotionCosts[[2]DataType{from, to}]
	return cost, ok
}

// Promotable reports whether from can appear where to is expected.
func Promotable(from, to DataType) bool {
	_, ok := PromotionCost(from, to)
	return ok
}
