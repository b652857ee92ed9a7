package monitor

import (
	"time"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/oshokin/tempwatch/internal/domain/chat"
	"github.com/oshokin/tempwatch/internal/domain/profile"
	"github.com/oshokin/tempwatch/internal/domain/temperature"
	repo "github.com/oshokin/tempwatch/internal/repository/preferences"
)

// Reading document keys.
const (
	keyCelsius   = "celsius"
	keyThreshold = "threshold"
	keyState     = "state"
	keyAlertSent = "alert_sent"
	keySource    = "source"
	keyTimestamp = "timestamp"
)

// Profile update request keys.
const (
	KeyField = "field"
	KeyValue = "value"
)

// Message document keys.
const (
	keyAuthor = "author"
	keyBody   = "body"
	keyAvatar = "avatar"
)

// ReadingToStruct encodes a reading. The timestamp is RFC 3339 with
// nanoseconds, empty for the initial reading.
func ReadingToStruct(r temperature.Reading) *structpb.Struct {
	timestamp := ""
	if !r.Timestamp.IsZero() {
		timestamp = r.Timestamp.UTC().Format(time.RFC3339Nano)
	}

	return &structpb.Struct{
		Fields: map[string]*structpb.Value{
			keyCelsius:   structpb.NewNumberValue(r.Celsius),
			keyThreshold: structpb.NewNumberValue(r.Threshold),
			keyState:     structpb.NewStringValue(r.State.String()),
			keyAlertSent: structpb.NewBoolValue(r.AlertSent),
			keySource:    structpb.NewStringValue(r.Source),
			keyTimestamp: structpb.NewStringValue(timestamp),
		},
	}
}

// ReadingFromStruct decodes a reading produced by ReadingToStruct.
func ReadingFromStruct(s *structpb.Struct) temperature.Reading {
	fields := s.GetFields()

	result := temperature.Reading{
		Celsius:   fields[keyCelsius].GetNumberValue(),
		Threshold: fields[keyThreshold].GetNumberValue(),
		State:     temperature.Below,
		AlertSent: fields[keyAlertSent].GetBoolValue(),
		Source:    fields[keySource].GetStringValue(),
	}

	if fields[keyState].GetStringValue() == temperature.AboveAlerted.String() {
		result.State = temperature.AboveAlerted
	}

	if ts, err := time.Parse(time.RFC3339Nano, fields[keyTimestamp].GetStringValue()); err == nil {
		result.Timestamp = ts
	}

	return result
}

// ProfileToStruct encodes a profile with its persisted key names.
func ProfileToStruct(p profile.UserProfile) *structpb.Struct {
	return repo.ToStruct(p)
}

// ProfileFromStruct decodes a profile, applying defaults for missing keys.
func ProfileFromStruct(s *structpb.Struct) profile.UserProfile {
	return repo.FromStruct(s)
}

// UpdateRequest builds the UpdateProfile request document.
func UpdateRequest(field profile.Field, value string) *structpb.Struct {
	return &structpb.Struct{
		Fields: map[string]*structpb.Value{
			KeyField: structpb.NewStringValue(string(field)),
			KeyValue: structpb.NewStringValue(value),
		},
	}
}

// MessagesToList encodes a conversation.
func MessagesToList(messages []chat.Message) *structpb.ListValue {
	values := make([]*structpb.Value, 0, len(messages))

	for _, m := range messages {
		values = append(values, structpb.NewStructValue(&structpb.Struct{
			Fields: map[string]*structpb.Value{
				keyAuthor: structpb.NewStringValue(m.Author),
				keyBody:   structpb.NewStringValue(m.Body),
				keyAvatar: structpb.NewStringValue(m.Avatar),
			},
		}))
	}

	return &structpb.ListValue{Values: values}
}

// MessagesFromList decodes a conversation, skipping non-object entries.
func MessagesFromList(list *structpb.ListValue) []chat.Message {
	result := make([]chat.Message, 0, len(list.GetValues()))

	for _, v := range list.GetValues() {
		s := v.GetStructValue()
		if s == nil {
			continue
		}

		fields := s.GetFields()
		result = append(result, chat.Message{
			Author: fields[keyAuthor].GetStringValue(),
			Body:   fields[keyBody].GetStringValue(),
			Avatar: fields[keyAvatar].GetStringValue(),
		})
	}

	return result
}
