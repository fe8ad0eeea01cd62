package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Snowflake is a Discord id read from JSON that may be written as a string or as a bare integer.
// Older data files store ids as numbers, so both forms decode to the same decimal string.
type Snowflake string

func (s *Snowflake) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*s = ""
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*s = Snowflake(str)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid snowflake %s: %w", data, err)
	}
	if _, err := strconv.ParseUint(n.String(), 10, 64); err != nil {
		return fmt.Errorf("invalid snowflake %s: not an unsigned integer", data)
	}
	*s = Snowflake(n.String())
	return nil
}

// UnmarshalJSON accepts the guild and owner ids as strings or numbers
func (r *VoiceRoom) UnmarshalJSON(data []byte) error {
	type voiceRoom VoiceRoom
	aux := struct {
		*voiceRoom
		GuildID Snowflake `json:"guild"`
		OwnerID Snowflake `json:"owner"`
	}{voiceRoom: (*voiceRoom)(r)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	r.GuildID = string(aux.GuildID)
	r.OwnerID = string(aux.OwnerID)
	return nil
}

// UnmarshalJSON accepts the guild and owner ids as strings or numbers
func (t *Ticket) UnmarshalJSON(data []byte) error {
	type ticket Ticket
	aux := struct {
		*ticket
		GuildID Snowflake `json:"guild"`
		OwnerID Snowflake `json:"owner"`
	}{ticket: (*ticket)(t)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	t.GuildID = string(aux.GuildID)
	t.OwnerID = string(aux.OwnerID)
	return nil
}
