package models

import "encoding/json"

// GlobalScope is the user_id of configuration entries that belong to the
// deployment rather than to an account.
const GlobalScope int64 = 0

// Configuration keys.
const (
	ConfigAllowRegister    = "isAllowRegister"
	ConfigTokenSecret      = "tokenSecret"
	ConfigTheme            = "theme"
	ConfigTwoFactorEnabled = "twoFactorEnabled"
	ConfigTwoFactorSecret  = "twoFactorSecret"
)

// ConfigEntry is a row of the configs table. Value holds the JSON document
// {"value": ...}.
type ConfigEntry struct {
	Key    string
	UserID int64
	Value  json.RawMessage
}

type configValue[T any] struct {
	Value T `json:"value"`
}

// EncodeConfigValue wraps v as {"value": v}.
func EncodeConfigValue[T any](v T) (json.RawMessage, error) {
	return json.Marshal(configValue[T]{Value: v})
}

// DecodeConfigValue unwraps {"value": v}. ok is false when raw is empty or
// the value is not a T.
func DecodeConfigValue[T any](raw json.RawMessage) (v T, ok bool) {
	if len(raw) == 0 {
		return v, false
	}
	var cv configValue[*T]
	if err := json.Unmarshal(raw, &cv); err != nil || cv.Value == nil {
		return v, false
	}
	return *cv.Value, true
}
