package firestore

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path"
	"sort"
	"strings"

	"gastos/internal/core"
	"gastos/internal/store"

	firestore "google.golang.org/api/firestore/v1"
	"google.golang.org/api/googleapi"
	goption "google.golang.org/api/option"
)

const (
	budgetCollection  = "users"
	expenseCollection = "expenses"
	listPageSize      = 300
)

// Client is a document-store adapter over the Firestore REST API. Budget
// records live in the "users" collection keyed by user ID; expenses live in
// the "expenses" collection keyed by store-assigned IDs and tagged with
// userId. Store errors propagate unmodified: no retry, no fallback.
type Client struct {
	docs   *firestore.ProjectsDatabasesDocumentsService
	parent string
}

var _ store.Store = (*Client)(nil)

// NewFromEnv creates a Firestore client. The project ID falls back to
// FIRESTORE_PROJECT_ID when empty. Credentials come from
// GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or
// GOOGLE_APPLICATION_CREDENTIALS.
func NewFromEnv(ctx context.Context, projectID string) (*Client, error) {
	if projectID == "" {
		projectID = strings.TrimSpace(os.Getenv("FIRESTORE_PROJECT_ID"))
	}
	if projectID == "" {
		return nil, errors.New("missing FIRESTORE_PROJECT_ID")
	}

	svc, err := newFirestoreService(ctx)
	if err != nil {
		return nil, fmt.Errorf("firestore service: %w", err)
	}

	return &Client{
		docs:   svc.Projects.Databases.Documents,
		parent: fmt.Sprintf("projects/%s/databases/(default)/documents", projectID),
	}, nil
}

func newFirestoreService(ctx context.Context) (*firestore.Service, error) {
	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	var err error
	switch {
	case serviceAccountJSON != "":
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		credentialsJSON, err = os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	return firestore.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(firestore.DatastoreScope))
}

func (c *Client) budgetDocName(userID string) string {
	return c.parent + "/" + budgetCollection + "/" + userID
}

func (c *Client) GetBudgetDoc(ctx context.Context, userID string) (store.BudgetDoc, bool, error) {
	doc, err := c.docs.Get(c.budgetDocName(userID)).Context(ctx).Do()
	if isNotFound(err) {
		return store.BudgetDoc{}, false, nil
	}
	if err != nil {
		return store.BudgetDoc{}, false, fmt.Errorf("get budget document: %w", err)
	}

	return store.BudgetDoc{
		BaseBudgetCents:    intField(doc, "baseBudget"),
		CurrentBudgetCents: intField(doc, "currentBudget"),
		CurrentMonth:       strField(doc, "currentMonth"),
		MonthlyBudgetCents: intField(doc, "monthlyBudget"),
	}, true, nil
}

// SetBudget patches the three budget fields with an update mask, which is
// Firestore's merge-write: fields outside the mask are left untouched and
// the document is created when absent.
func (c *Client) SetBudget(ctx context.Context, userID string, b core.Budget) error {
	doc := &firestore.Document{
		Fields: map[string]firestore.Value{
			"baseBudget":    intValue(b.BaseBudget.Cents),
			"currentBudget": intValue(b.CurrentBudget.Cents),
			"currentMonth":  strValue(b.CurrentMonth),
		},
	}

	_, err := c.docs.Patch(c.budgetDocName(userID), doc).
		UpdateMaskFieldPaths("baseBudget", "currentBudget", "currentMonth").
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("patch budget document: %w", err)
	}
	return nil
}

func (c *Client) CreateExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	doc := &firestore.Document{
		Fields: map[string]firestore.Value{
			"description": strValue(e.Description),
			"amount":      intValue(e.Amount.Cents),
			"category":    strValue(string(e.Category)),
			"date":        strValue(e.Date),
			"userId":      strValue(e.UserID),
			"createdAt":   intValue(e.CreatedAt),
		},
	}

	created, err := c.docs.CreateDocument(c.parent, expenseCollection, doc).Context(ctx).Do()
	if err != nil {
		return core.Expense{}, fmt.Errorf("create expense document: %w", err)
	}

	e.ID = path.Base(created.Name)
	return e, nil
}

func (c *Client) DeleteExpense(ctx context.Context, userID, id string) error {
	name := c.parent + "/" + expenseCollection + "/" + id

	// The REST delete has no owner filter; check ownership with a point read.
	doc, err := c.docs.Get(name).Context(ctx).Do()
	if isNotFound(err) {
		return store.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("get expense document: %w", err)
	}
	if owner := strField(doc, "userId"); owner == nil || *owner != userID {
		return store.ErrNotFound
	}

	if _, err := c.docs.Delete(name).Context(ctx).Do(); err != nil {
		return fmt.Errorf("delete expense document: %w", err)
	}
	return nil
}

// ListExpenses pages through the expense collection and keeps the caller's
// documents. The generated runQuery call cannot surface the endpoint's
// streamed result array, so filtering and ordering happen client-side.
func (c *Client) ListExpenses(ctx context.Context, userID string) ([]core.Expense, error) {
	var out []core.Expense
	pageToken := ""
	for {
		call := c.docs.List(c.parent, expenseCollection).
			PageSize(listPageSize).
			Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		resp, err := call.Do()
		if err != nil {
			return nil, fmt.Errorf("list expense documents: %w", err)
		}

		out = appendUserExpenses(out, resp.Documents, userID)

		if resp.NextPageToken == "" {
			break
		}
		pageToken = resp.NextPageToken
	}

	sortExpensesByCreatedAtDesc(out)
	return out, nil
}

// appendUserExpenses decodes the documents owned by userID onto out.
func appendUserExpenses(out []core.Expense, docs []*firestore.Document, userID string) []core.Expense {
	for _, doc := range docs {
		if doc == nil {
			continue
		}
		e := decodeExpense(doc)
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	return out
}

func sortExpensesByCreatedAtDesc(expenses []core.Expense) {
	sort.Slice(expenses, func(i, j int) bool {
		if expenses[i].CreatedAt != expenses[j].CreatedAt {
			return expenses[i].CreatedAt > expenses[j].CreatedAt
		}
		return expenses[i].ID > expenses[j].ID
	})
}

func decodeExpense(doc *firestore.Document) core.Expense {
	e := core.Expense{ID: path.Base(doc.Name)}
	if v := strField(doc, "description"); v != nil {
		e.Description = *v
	}
	if v := intField(doc, "amount"); v != nil {
		e.Amount = core.Money{Cents: *v}
	}
	if v := strField(doc, "category"); v != nil {
		e.Category = core.Category(*v)
	}
	if v := strField(doc, "date"); v != nil {
		e.Date = *v
	}
	if v := strField(doc, "userId"); v != nil {
		e.UserID = *v
	}
	if v := intField(doc, "createdAt"); v != nil {
		e.CreatedAt = *v
	}
	return e
}

func intValue(v int64) firestore.Value {
	return firestore.Value{IntegerValue: v, ForceSendFields: []string{"IntegerValue"}}
}

func strValue(v string) firestore.Value {
	return firestore.Value{StringValue: v, ForceSendFields: []string{"StringValue"}}
}

func intField(doc *firestore.Document, field string) *int64 {
	v, ok := doc.Fields[field]
	if !ok {
		return nil
	}
	n := v.IntegerValue
	return &n
}

func strField(doc *firestore.Document, field string) *string {
	v, ok := doc.Fields[field]
	if !ok {
		return nil
	}
	s := v.StringValue
	return &s
}

func isNotFound(err error) bool {
	var gerr *googleapi.Error
	return errors.As(err, &gerr) && gerr.Code == http.StatusNotFound
}
