package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/uxlens/pkg/domain/interfaces"
	"github.com/secmon-lab/uxlens/pkg/domain/model"
	"github.com/secmon-lab/uxlens/pkg/domain/types"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// FixspecCollection is the default collection name
const FixspecCollection = "fixspecs"

type fixspecDocument struct {
	IssueID      string          `firestore:"issue_id"`
	Type         string          `firestore:"type"`
	Description  string          `firestore:"description"`
	Severity     string          `firestore:"severity"`
	SuggestedFix suggestedFixDoc `firestore:"suggested_fix"`
	Timestamp    time.Time       `firestore:"timestamp"`
	Status       string          `firestore:"status"`
}

type suggestedFixDoc struct {
	Summary     string   `firestore:"summary"`
	Steps       []string `firestore:"steps"`
	CodeExample string   `firestore:"code_example,omitempty"`
	References  []string `firestore:"references,omitempty"`
}

func fixspecToDocument(f *model.Fixspec) *fixspecDocument {
	return &fixspecDocument{
		IssueID:     f.IssueID,
		Type:        string(f.Type),
		Description: f.Description,
		Severity:    string(f.Severity),
		SuggestedFix: suggestedFixDoc{
			Summary:     f.SuggestedFix.Summary,
			Steps:       f.SuggestedFix.Steps,
			CodeExample: f.SuggestedFix.CodeExample,
			References:  f.SuggestedFix.References,
		},
		Timestamp: f.Timestamp,
		Status:    string(f.Status),
	}
}

func fixspecToModel(doc *fixspecDocument) *model.Fixspec {
	return &model.Fixspec{
		IssueID:     doc.IssueID,
		Type:        types.IssueType(doc.Type),
		Description: doc.Description,
		Severity:    types.Severity(doc.Severity),
		SuggestedFix: model.SuggestedFix{
			Summary:     doc.SuggestedFix.Summary,
			Steps:       doc.SuggestedFix.Steps,
			CodeExample: doc.SuggestedFix.CodeExample,
			References:  doc.SuggestedFix.References,
		},
		Timestamp: doc.Timestamp,
		Status:    types.FixspecStatus(doc.Status),
	}
}

// FixspecRepository stores one document per issue ID. DocumentRef.Create
// fails with AlreadyExists when the document is present, which gives
// create-if-absent semantics without a transaction.
type FixspecRepository struct {
	client     *firestore.Client
	collection string
}

var _ interfaces.FixspecRepository = &FixspecRepository{}

type Option func(*FixspecRepository)

// CollectionName returns the fixspec collection name for prefix
func CollectionName(prefix string) string {
	if prefix == "" {
		return FixspecCollection
	}
	return prefix + "_" + FixspecCollection
}

func WithCollectionPrefix(prefix string) Option {
	return func(r *FixspecRepository) {
		r.collection = CollectionName(prefix)
	}
}

func New(ctx context.Context, projectID, databaseID string, opts ...Option) (*FixspecRepository, error) {
	if databaseID == "" {
		databaseID = firestore.DefaultDatabaseID
	}

	client, err := firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client",
			goerr.V("projectID", projectID), goerr.V("databaseID", databaseID))
	}

	r := &FixspecRepository{
		client:     client,
		collection: FixspecCollection,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

func (r *FixspecRepository) SaveOnce(ctx context.Context, fixspec *model.Fixspec) (bool, error) {
	if err := fixspec.Validate(); err != nil {
		return false, err
	}

	docRef := r.client.Collection(r.collection).Doc(fixspec.IssueID)
	if _, err := docRef.Create(ctx, fixspecToDocument(fixspec)); err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return false, nil
		}
		return false, goerr.Wrap(err, "failed to create fixspec", goerr.V(model.IssueIDKey, fixspec.IssueID))
	}
	return true, nil
}

func (r *FixspecRepository) Get(ctx context.Context, issueID string) (*model.Fixspec, error) {
	if err := model.ValidateIssueID(issueID); err != nil {
		return nil, err
	}

	doc, err := r.client.Collection(r.collection).Doc(issueID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(model.ErrFixspecNotFound, "fixspec not found", goerr.V(model.IssueIDKey, issueID))
		}
		return nil, goerr.Wrap(err, "failed to get fixspec", goerr.V(model.IssueIDKey, issueID))
	}

	var fsDoc fixspecDocument
	if err := doc.DataTo(&fsDoc); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal fixspec", goerr.V(model.IssueIDKey, issueID))
	}
	return fixspecToModel(&fsDoc), nil
}

// List filtered by status uses the (status ASC, timestamp DESC) composite
// index created by the migrate command
func (r *FixspecRepository) List(ctx context.Context, filter interfaces.FixspecFilter) ([]*model.Fixspec, error) {
	query := r.client.Collection(r.collection).Query
	if filter.Status != "" {
		query = query.Where("status", "==", string(filter.Status))
	}
	iter := query.OrderBy("timestamp", firestore.Desc).Documents(ctx)
	defer iter.Stop()

	specs := []*model.Fixspec{}
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate fixspecs")
		}

		var fsDoc fixspecDocument
		if err := doc.DataTo(&fsDoc); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal fixspec", goerr.V("docID", doc.Ref.ID))
		}
		specs = append(specs, fixspecToModel(&fsDoc))
	}

	model.SortFixspecs(specs)
	return specs, nil
}

func (r *FixspecRepository) Close() error {
	if r.client != nil {
		return r.client.Close()
	}
	return nil
}
