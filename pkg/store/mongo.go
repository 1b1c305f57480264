package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/motifhq/motif/pkg/errors"
)

// MongoStore reads the template catalog from the admin collaborator's
// MongoDB collection.
type MongoStore struct {
	client *mongo.Client
	col    *mongo.Collection
}

// mongoTemplate mirrors the collaborator's document shape.
type mongoTemplate struct {
	ID          string      `bson:"_id"`
	Locator     string      `bson:"locator"`
	Name        string      `bson:"name"`
	Width       float64     `bson:"width"`
	Height      float64     `bson:"height"`
	Shape       string      `bson:"shape"`
	Object      string      `bson:"object"`
	FrameStyle  string      `bson:"frameStyle"`
	BorderStyle string      `bson:"borderStyle"`
	FillStyle   string      `bson:"fillStyle"`
	CornerStyle string      `bson:"cornerStyle"`
	Palette     []string    `bson:"palette"`
	Active      bool        `bson:"active"`
	Zones       []mongoZone `bson:"zones"`
}

type mongoZone struct {
	Label      string  `bson:"label"`
	Index      int     `bson:"index"`
	FontFamily string  `bson:"fontFamily"`
	FontSize   float64 `bson:"fontSize"`
	Fill       string  `bson:"fill"`
	Stroke     string  `bson:"stroke"`
	Transform  string  `bson:"transform"`
	MaxWidth   float64 `bson:"maxWidth"`
	Editable   bool    `bson:"editable"`
	SortOrder  int     `bson:"sortOrder"`
}

// NewMongoStore connects to the catalog database and verifies reachability.
func NewMongoStore(ctx context.Context, uri, database, collection string) (*MongoStore, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeFetch, err, "connect to template store")
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, errors.Wrap(errors.ErrCodeFetch, err, "template store unreachable")
	}
	return &MongoStore{
		client: client,
		col:    client.Database(database).Collection(collection),
	}, nil
}

// ListActiveTemplates returns every active template with its zones, ordered
// by name for stable catalog display.
func (s *MongoStore) ListActiveTemplates(ctx context.Context) ([]Template, error) {
	cur, err := s.col.Find(ctx, bson.M{"active": true},
		options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeFetch, err, "list templates")
	}
	defer cur.Close(ctx)

	var docs []mongoTemplate
	if err := cur.All(ctx, &docs); err != nil {
		return nil, errors.Wrap(errors.ErrCodeFetch, err, "decode templates")
	}

	templates := make([]Template, 0, len(docs))
	for _, d := range docs {
		templates = append(templates, d.toTemplate())
	}
	return templates, nil
}

// Close disconnects from the database.
func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (d mongoTemplate) toTemplate() Template {
	zones := make([]TextZone, 0, len(d.Zones))
	for _, z := range d.Zones {
		zones = append(zones, TextZone{
			Label:      z.Label,
			Index:      z.Index,
			FontFamily: z.FontFamily,
			FontSize:   z.FontSize,
			Fill:       z.Fill,
			Stroke:     z.Stroke,
			Transform:  z.Transform,
			MaxWidth:   z.MaxWidth,
			Editable:   z.Editable,
			SortOrder:  z.SortOrder,
		})
	}
	return Template{
		ID:          d.ID,
		Locator:     d.Locator,
		Name:        d.Name,
		Width:       d.Width,
		Height:      d.Height,
		Shape:       d.Shape,
		Object:      d.Object,
		FrameStyle:  d.FrameStyle,
		BorderStyle: d.BorderStyle,
		FillStyle:   d.FillStyle,
		CornerStyle: d.CornerStyle,
		Palette:     d.Palette,
		Zones:       zones,
	}
}

var _ TemplateStore = (*MongoStore)(nil)
