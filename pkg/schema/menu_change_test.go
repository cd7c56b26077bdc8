package schema

import (
	"testing"
	"time"

	"github.com/hamba/avro/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMenuChangeV1(t *testing.T) {
	t.Run("Regular", func(t *testing.T) {
		vMarshal := MenuChangeV1{
			Kind:       "item",
			Action:     "updated",
			EntityID:   7,
			Name:       "Burger",
			OccurredAt: time.Date(2024, 5, 1, 12, 30, 15, 250e6, time.UTC),
		}

		var changeSchema avro.Schema
		require.NotPanics(t, func() {
			changeSchema = MenuChangeV1Avro()
		})

		data, err := avro.Marshal(changeSchema, vMarshal)
		require.NoError(t, err)

		var vUnmarshal MenuChangeV1
		err = avro.Unmarshal(changeSchema, data, &vUnmarshal)
		require.NoError(t, err)

		assert.Equal(t, vMarshal.Kind, vUnmarshal.Kind)
		assert.Equal(t, vMarshal.Action, vUnmarshal.Action)
		assert.Equal(t, vMarshal.EntityID, vUnmarshal.EntityID)
		assert.Equal(t, vMarshal.Name, vUnmarshal.Name)
		assert.True(t, vMarshal.OccurredAt.Equal(vUnmarshal.OccurredAt))
	})

	t.Run("Key", func(t *testing.T) {
		v := MenuChangeV1{Kind: "category", EntityID: 3}
		assert.Equal(t, "category-3", v.Key())
	})
}
