package models

import (
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/shopspring/decimal"
)

// Money is a currency amount held at two decimal places.
// It is stored in DynamoDB as a number attribute so balances can be compared in condition expressions.
type Money struct {
	decimal.Decimal
}

// NewMoney rounds d to two decimal places.
func NewMoney(d decimal.Decimal) Money {
	return Money{Decimal: d.Round(2)}
}

// MaxAmount is the largest magnitude accepted for an amount or an account limit.
var MaxAmount = Money{Decimal: decimal.RequireFromString("999999999999.99")}

const (
	maxIntegerDigits = 12
	maxScale         = 32
)

// InBounds reports whether d is no larger than MaxAmount and carries at most 32 decimal places.
// Rounding a decimal with an extreme exponent is expensive, so check this before NewMoney.
func InBounds(d decimal.Decimal) bool {
	exp := int(d.Exponent())
	if exp < -maxScale || d.NumDigits()+exp > maxIntegerDigits {
		return false
	}
	return d.Abs().LessThanOrEqual(MaxAmount.Decimal)
}

// MustMoney parses s and panics if it is not a decimal number. Intended for constants and tests.
func MustMoney(s string) Money {
	return NewMoney(decimal.RequireFromString(s))
}

// ZeroMoney is an amount of zero.
var ZeroMoney = Money{Decimal: decimal.Zero}

// Fixed renders the amount with exactly two decimal places.
func (m Money) Fixed() string {
	return m.Decimal.StringFixed(2)
}

// MarshalDynamoDBAttributeValue implements attributevalue.Marshaler.
func (m Money) MarshalDynamoDBAttributeValue() (types.AttributeValue, error) {
	return &types.AttributeValueMemberN{Value: m.Fixed()}, nil
}

// UnmarshalDynamoDBAttributeValue implements attributevalue.Unmarshaler.
func (m *Money) UnmarshalDynamoDBAttributeValue(av types.AttributeValue) error {
	switch v := av.(type) {
	case *types.AttributeValueMemberN:
		d, err := decimal.NewFromString(v.Value)
		if err != nil {
			return fmt.Errorf("invalid money value %q: %w", v.Value, err)
		}
		*m = NewMoney(d)
	case *types.AttributeValueMemberNULL:
		*m = ZeroMoney
	default:
		return fmt.Errorf("unsupported attribute type %T for money", av)
	}
	return nil
}
