package db

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"oxyspa/b2b/internal/models"
)

var testCollections = Collections{
	models.EntityLead: "lead",
	"product":         "catalogue_products",
}

type widget struct {
	Name  string   `bson:"name"`
	Sizes []int    `bson:"sizes"`
	Tags  []string `bson:"tags,omitempty"`
}

func TestCollections_Resolve(t *testing.T) {
	name, err := testCollections.Resolve("product")
	require.NoError(t, err)
	assert.Equal(t, "catalogue_products", name)

	_, err = testCollections.Resolve("Product")
	assert.ErrorIs(t, err, ErrUnknownEntity)

	_, err = Collections{"empty": ""}.Resolve("empty")
	assert.ErrorIs(t, err, ErrUnknownEntity)

	assert.ElementsMatch(t, []string{"lead", "catalogue_products"}, testCollections.Names())
}

func TestMongoDocumentStore_InsertDocument(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	payloads := map[string]interface{}{
		"map":    map[string]interface{}{"title": "Spa kit", "price": 19.5, "in_stock": true},
		"bson.D": bson.D{{Key: "title", Value: "Filter"}, {Key: "qty", Value: 3}},
		"struct": widget{Name: "Valve", Sizes: []int{1, 2}},
		"lead":   models.Lead{CompanyName: "Acme Spas", ContactName: "Jo Lee", Email: "jo@acme.test", Consent: true, Source: "landing"},
	}

	for name, payload := range payloads {
		payload := payload
		mt.Run(name, func(mt *mtest.T) {
			mt.AddMockResponses(mtest.CreateSuccessResponse())
			store := NewMongoDocumentStore(mt.DB, testCollections)

			id, err := store.InsertDocument(context.Background(), "product", payload)
			require.NoError(mt, err)
			assert.NotEmpty(mt, id)
			_, err = primitive.ObjectIDFromHex(id)
			assert.NoError(mt, err, "generated id should be an ObjectID hex string")
		})
	}

	mt.Run("caller supplied id", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())
		store := NewMongoDocumentStore(mt.DB, testCollections)

		id, err := store.InsertDocument(context.Background(), "product", bson.M{"_id": "sku-42", "title": "Pump"})
		require.NoError(mt, err)
		assert.Equal(mt, "sku-42", id)
	})

	mt.Run("write rejected", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    121,
			Message: "Document failed validation",
		}))
		store := NewMongoDocumentStore(mt.DB, testCollections)

		id, err := store.InsertDocument(context.Background(), models.EntityLead, bson.M{"company_name": "Acme"})
		assert.Empty(mt, id)

		var insErr *InsertionError
		require.True(mt, errors.As(err, &insErr))
		assert.Equal(mt, models.EntityLead, insErr.Entity)
		assert.Equal(mt, "lead", insErr.Collection)

		var writeErr mongo.WriteException
		assert.True(mt, errors.As(err, &writeErr), "cause should be preserved")
	})

	mt.Run("store error", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    13,
			Name:    "Unauthorized",
			Message: "not authorized on oxyspa to execute command",
		}))
		store := NewMongoDocumentStore(mt.DB, testCollections)

		_, err := store.InsertDocument(context.Background(), models.EntityLead, bson.M{"company_name": "Acme"})
		var insErr *InsertionError
		require.True(mt, errors.As(err, &insErr))
		assert.Contains(mt, err.Error(), "not authorized")
	})
}

func TestMongoDocumentStore_RejectsBeforeWriting(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("unknown entity", func(mt *mtest.T) {
		store := NewMongoDocumentStore(mt.DB, testCollections)
		_, err := store.InsertDocument(context.Background(), "invoice", bson.M{"total": 1})

		var insErr *InsertionError
		require.True(mt, errors.As(err, &insErr))
		assert.Empty(mt, insErr.Collection)
		assert.ErrorIs(mt, err, ErrUnknownEntity)
	})

	mt.Run("nil document", func(mt *mtest.T) {
		store := NewMongoDocumentStore(mt.DB, testCollections)
		_, err := store.InsertDocument(context.Background(), "product", nil)
		assert.ErrorIs(mt, err, ErrNilDocument)
	})

	mt.Run("unserializable document", func(mt *mtest.T) {
		store := NewMongoDocumentStore(mt.DB, testCollections)
		_, err := store.InsertDocument(context.Background(), "product", map[string]interface{}{"ch": make(chan int)})

		var insErr *InsertionError
		require.True(mt, errors.As(err, &insErr))
		assert.Contains(mt, err.Error(), "serialize document")
	})

	mt.Run("not a document", func(mt *mtest.T) {
		store := NewMongoDocumentStore(mt.DB, testCollections)
		_, err := store.InsertDocument(context.Background(), "product", "just a string")
		var insErr *InsertionError
		assert.True(mt, errors.As(err, &insErr))
	})
}

func TestMongoDocumentStore_NoDatabase(t *testing.T) {
	store := NewMongoDocumentStore(nil, testCollections)
	_, err := store.InsertDocument(context.Background(), models.EntityLead, bson.M{"a": 1})
	assert.ErrorIs(t, err, ErrStoreUnavailable)
}

func TestLeadStorageRoundTrip(t *testing.T) {
	spas := 12
	cost := 99.5
	approach := models.ChemicalsMixed
	city := "Lisbon"
	lead := models.Lead{
		CompanyName:         "Acme Spas",
		ContactName:         "Jo Lee",
		Email:               "jo@acme.test",
		City:                &city,
		SpaCount:            &spas,
		CurrentChemicals:    &approach,
		MonthlyChemicalCost: &cost,
		Consent:             true,
		Source:              "landing",
	}

	raw, err := bson.Marshal(lead)
	require.NoError(t, err)

	// Stored documents gain an _id; decoding must ignore it.
	var doc bson.M
	require.NoError(t, bson.Unmarshal(raw, &doc))
	doc["_id"] = primitive.NewObjectID()
	assert.Contains(t, doc, "phone")
	assert.Nil(t, doc["phone"])

	withID, err := bson.Marshal(doc)
	require.NoError(t, err)

	var back models.Lead
	require.NoError(t, bson.Unmarshal(withID, &back))
	assert.Equal(t, lead, back)
}

func TestInsertionError_Message(t *testing.T) {
	cause := errors.New("connection refused")
	err := &InsertionError{Entity: "lead", Collection: "lead", Err: cause}
	assert.Equal(t, "insert lead into lead: connection refused", err.Error())
	assert.ErrorIs(t, err, cause)

	err = &InsertionError{Entity: "lead", Err: cause}
	assert.Equal(t, "insert lead: connection refused", err.Error())
}
