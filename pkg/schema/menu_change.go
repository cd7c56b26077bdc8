package schema

import (
	"time"

	"github.com/hamba/avro/v2"
)

const MenuChangeSchemaTextV1 = `{
	"type": "record",
	"namespace": "menu",
	"name": "menu_change",
	"fields" : [
		{"name": "kind", "type": "string"},
		{"name": "action", "type": "string"},
		{"name": "entity_id", "type": "long"},
		{"name": "name", "type": "string"},
		{"name": "occurred_at", "type": {"type": "long", "logicalType": "timestamp-millis"}}
	]
}`

// A MenuChangeV1 is the wire form of a committed menu mutation.
type MenuChangeV1 struct {
	Kind       string    `avro:"kind"`
	Action     string    `avro:"action"`
	EntityID   int64     `avro:"entity_id"`
	Name       string    `avro:"name"`
	OccurredAt time.Time `avro:"occurred_at"`
}

// Key returns the record key, one per entity.
func (v MenuChangeV1) Key() string {
	return MenuChangeKey(v.Kind, v.EntityID)
}

func MenuChangeKey(kind string, id int64) string {
	return kind + "-" + formatInt(id)
}

func MenuChangeV1Avro() avro.Schema {
	return avro.MustParse(MenuChangeSchemaTextV1)
}
