package schema_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/sr"

	"github.com/niksmo/menu-admin/pkg/schema"
)

type MockSchemaIdentifier struct {
	mock.Mock
}

func (c *MockSchemaIdentifier) DetermineID(
	ctx context.Context, subject string, avroSchemaText string,
) (id int, err error) {
	args := c.Called(ctx, subject, avroSchemaText)
	return args.Int(0), args.Error(1)
}

type MockSchemaRegistry struct {
	mock.Mock
}

func (r *MockSchemaRegistry) CreateSchema(
	ctx context.Context, subject string, s sr.Schema,
) (sr.SubjectSchema, error) {
	args := r.Called(ctx, subject, s)
	return args.Get(0).(sr.SubjectSchema), args.Error(1)
}

func TestSerdeMenuChangeV1(t *testing.T) {
	t.Run("NoOpts", func(t *testing.T) {
		_, err := schema.NewSerdeMenuChangeV1(t.Context())
		require.Error(t, err)
		assert.ErrorIs(t, err, schema.ErrTooFewOpts)
	})

	t.Run("OneOpt", func(t *testing.T) {
		_, err := schema.NewSerdeMenuChangeV1(
			t.Context(),
			schema.SchemaIdentifierOpt(new(MockSchemaIdentifier)),
		)
		require.Error(t, err)
		assert.ErrorIs(t, err, schema.ErrTooFewOpts)
	})

	t.Run("RegistryFailure", func(t *testing.T) {
		schemaIdentifier := new(MockSchemaIdentifier)
		subject := "menu-changes-value"
		schemaIdentifier.On(
			"DetermineID", t.Context(), subject, schema.MenuChangeSchemaTextV1,
		).Return(0, errors.New("registry unavailable"))

		_, err := schema.NewSerdeMenuChangeV1(
			t.Context(),
			schema.SubjectOpt(subject),
			schema.SchemaIdentifierOpt(schemaIdentifier),
		)
		require.Error(t, err)
	})

	t.Run("EncodeDecode", func(t *testing.T) {
		schemaIdentifier := new(MockSchemaIdentifier)
		schemaID := 1
		subject := schema.ValueSubject("menu-changes")

		schemaIdentifier.On(
			"DetermineID", t.Context(), subject, schema.MenuChangeSchemaTextV1,
		).Return(schemaID, nil)

		serde, err := schema.NewSerdeMenuChangeV1(
			t.Context(),
			schema.SubjectOpt(subject),
			schema.SchemaIdentifierOpt(schemaIdentifier),
		)
		require.NoError(t, err)

		changeValue1 := schema.MenuChangeV1{
			Kind:       "item",
			Action:     "created",
			EntityID:   12,
			Name:       "Fries",
			OccurredAt: time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC),
		}

		encodedData, err := serde.Encode(changeValue1)
		require.NoError(t, err)

		var changeValue2 schema.MenuChangeV1
		err = serde.Decode(encodedData, &changeValue2)
		require.NoError(t, err)

		assert.Equal(t, changeValue1.Kind, changeValue2.Kind)
		assert.Equal(t, changeValue1.Action, changeValue2.Action)
		assert.Equal(t, changeValue1.EntityID, changeValue2.EntityID)
		assert.Equal(t, changeValue1.Name, changeValue2.Name)
		assert.True(t, changeValue1.OccurredAt.Equal(changeValue2.OccurredAt))
	})
}

func TestSchemaCreater(t *testing.T) {
	registry := new(MockSchemaRegistry)
	subject := "menu-changes-value"
	registry.On("CreateSchema", t.Context(), subject, sr.Schema{
		Type:   sr.TypeAvro,
		Schema: schema.MenuChangeSchemaTextV1,
	}).Return(sr.SubjectSchema{Subject: subject, ID: 42}, nil)

	id, err := schema.NewSchemaCreater(registry).DetermineID(
		t.Context(), subject, schema.MenuChangeSchemaTextV1,
	)
	require.NoError(t, err)
	assert.Equal(t, 42, id)
	registry.AssertExpectations(t)
}
