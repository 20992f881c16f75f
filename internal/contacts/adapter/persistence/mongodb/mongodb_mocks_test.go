package mongodb

import (
	"context"
	"reflect"
	"sort"
	"sync"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// memoryCollection is an in-memory CollectionInterface understanding the
// equality filters, $set/$inc updates, upserts and single-key sorts used by
// this package.
type memoryCollection struct {
	mu   sync.Mutex
	docs []bson.M
	err  error
}

func newMemoryCollection() *memoryCollection {
	return &memoryCollection{}
}

func toM(v interface{}) bson.M {
	raw, err := bson.Marshal(v)
	if err != nil {
		panic(err)
	}
	var m bson.M
	if err := bson.Unmarshal(raw, &m); err != nil {
		panic(err)
	}
	return m
}

func (m *memoryCollection) matches(doc bson.M, filter interface{}) bool {
	for k, v := range toM(filter) {
		if !reflect.DeepEqual(doc[k], v) {
			return false
		}
	}
	return true
}

func (m *memoryCollection) indexOf(filter interface{}) int {
	for i, doc := range m.docs {
		if m.matches(doc, filter) {
			return i
		}
	}
	return -1
}

func (m *memoryCollection) InsertOne(ctx context.Context, doc interface{}) (interface{}, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}

	stored := toM(doc)
	if _, ok := stored["_id"]; !ok {
		stored["_id"] = primitive.NewObjectID()
	}
	m.docs = append(m.docs, stored)
	return stored["_id"], nil
}

func (m *memoryCollection) FindOne(ctx context.Context, filter interface{}) SingleResultInterface {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return &memorySingleResult{err: m.err}
	}

	if i := m.indexOf(filter); i >= 0 {
		return &memorySingleResult{doc: m.docs[i]}
	}
	return &memorySingleResult{err: mongo.ErrNoDocuments}
}

func (m *memoryCollection) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) (CursorInterface, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}

	var out []bson.M
	for _, doc := range m.docs {
		if m.matches(doc, filter) {
			out = append(out, doc)
		}
	}

	if len(opts) > 0 && opts[0] != nil && opts[0].Sort != nil {
		if keys, ok := opts[0].Sort.(bson.D); ok && len(keys) == 1 {
			key := keys[0].Key
			sort.SliceStable(out, func(i, j int) bool {
				a, _ := out[i][key].(int64)
				b, _ := out[j][key].(int64)
				return a < b
			})
		}
	}

	return &memoryCursor{docs: out, pos: -1}, nil
}

func (m *memoryCollection) DeleteOne(ctx context.Context, filter interface{}) (DeleteResultInterface, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}

	if i := m.indexOf(filter); i >= 0 {
		m.docs = append(m.docs[:i], m.docs[i+1:]...)
		return &MongoDeleteResultAdapter{deleted: 1}, nil
	}
	return &MongoDeleteResultAdapter{deleted: 0}, nil
}

func (m *memoryCollection) FindOneAndUpdate(ctx context.Context, filter interface{}, update interface{}, opts ...*options.FindOneAndUpdateOptions) SingleResultInterface {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return &memorySingleResult{err: m.err}
	}

	var upsert, after bool
	if len(opts) > 0 && opts[0] != nil {
		upsert = opts[0].Upsert != nil && *opts[0].Upsert
		after = opts[0].ReturnDocument != nil && *opts[0].ReturnDocument == options.After
	}

	i := m.indexOf(filter)
	if i < 0 {
		if !upsert {
			return &memorySingleResult{err: mongo.ErrNoDocuments}
		}
		created := toM(filter)
		if _, ok := created["_id"]; !ok {
			created["_id"] = primitive.NewObjectID()
		}
		m.docs = append(m.docs, created)
		i = len(m.docs) - 1
		applyUpdate(created, update)
		if after {
			return &memorySingleResult{doc: created}
		}
		return &memorySingleResult{err: mongo.ErrNoDocuments}
	}

	before := toM(m.docs[i])
	applyUpdate(m.docs[i], update)
	if after {
		return &memorySingleResult{doc: m.docs[i]}
	}
	return &memorySingleResult{doc: before}
}

func applyUpdate(doc bson.M, update interface{}) {
	u, ok := update.(bson.M)
	if !ok {
		return
	}
	if set, ok := u["$set"].(bson.M); ok {
		for k, v := range set {
			doc[k] = v
		}
	}
	if inc, ok := u["$inc"].(bson.M); ok {
		for k, v := range inc {
			cur, _ := doc[k].(int64)
			delta, _ := v.(int64)
			doc[k] = cur + delta
		}
	}
}

func (m *memoryCollection) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.docs)
}

type memorySingleResult struct {
	doc bson.M
	err error
}

func (r *memorySingleResult) Decode(v interface{}) error {
	if r.err != nil {
		return r.err
	}
	raw, err := bson.Marshal(r.doc)
	if err != nil {
		return err
	}
	return bson.Unmarshal(raw, v)
}

type memoryCursor struct {
	docs []bson.M
	pos  int
}

func (c *memoryCursor) Next(ctx context.Context) bool {
	c.pos++
	return c.pos < len(c.docs)
}

func (c *memoryCursor) Decode(val interface{}) error {
	raw, err := bson.Marshal(c.docs[c.pos])
	if err != nil {
		return err
	}
	return bson.Unmarshal(raw, val)
}

func (c *memoryCursor) Close(ctx context.Context) error { return nil }
func (c *memoryCursor) Err() error                      { return nil }
