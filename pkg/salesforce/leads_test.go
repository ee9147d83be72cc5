package salesforce

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindLeadByEmail(t *testing.T) {
	t.Run("returns lead when found", func(t *testing.T) {
		mock := &mockClient{
			queryFn: func(_ context.Context, soql string, out any) error {
				assert.Contains(t, soql, "Email = 'jane@acme.test'")
				assert.Contains(t, soql, "SELECT Id, FirstName")

				leads := out.(*[]Lead)
				*leads = []Lead{
					{ID: "00Qxx", FirstName: "Jane", LastName: "Doe", Email: "jane@acme.test"},
				}
				return nil
			},
		}

		lead, err := FindLeadByEmail(context.Background(), mock, "jane@acme.test")
		require.NoError(t, err)
		require.NotNil(t, lead)
		assert.Equal(t, "00Qxx", lead.ID)
	})

	t.Run("returns nil when not found", func(t *testing.T) {
		mock := &mockClient{}

		lead, err := FindLeadByEmail(context.Background(), mock, "nobody@x.test")
		require.NoError(t, err)
		assert.Nil(t, lead)
	})

	t.Run("escapes quotes in email", func(t *testing.T) {
		mock := &mockClient{
			queryFn: func(_ context.Context, soql string, _ any) error {
				assert.Contains(t, soql, `o\'brien@x.test`)
				return nil
			},
		}

		_, err := FindLeadByEmail(context.Background(), mock, "o'brien@x.test")
		require.NoError(t, err)
	})

	t.Run("propagates query errors", func(t *testing.T) {
		mock := &mockClient{
			queryFn: func(context.Context, string, any) error {
				return errors.New("boom")
			},
		}

		_, err := FindLeadByEmail(context.Background(), mock, "x@y.test")
		assert.Error(t, err)
	})
}

func TestCreateLead(t *testing.T) {
	t.Run("inserts full record", func(t *testing.T) {
		mock := &mockClient{
			insertOneFn: func(_ context.Context, obj string, record map[string]any) (string, error) {
				assert.Equal(t, "Lead", obj)
				assert.Equal(t, "Jane", record["FirstName"])
				assert.Equal(t, "Doe", record["LastName"])
				assert.Equal(t, "Acme Plumbing", record["Company"])
				return "00Qnew", nil
			},
		}

		id, err := CreateLead(context.Background(), mock, Lead{
			FirstName: "Jane", LastName: "Doe",
			Email: "jane@acme.test", Company: "Acme Plumbing",
		})
		require.NoError(t, err)
		assert.Equal(t, "00Qnew", id)
	})

	t.Run("requires email", func(t *testing.T) {
		_, err := CreateLead(context.Background(), &mockClient{}, Lead{LastName: "Doe"})
		assert.Error(t, err)
	})

	t.Run("fills required fields salesforce demands", func(t *testing.T) {
		mock := &mockClient{
			insertOneFn: func(_ context.Context, _ string, record map[string]any) (string, error) {
				assert.Equal(t, "Jane", record["LastName"], "last name falls back to first")
				assert.NotEmpty(t, record["Company"])
				return "00Qnew", nil
			},
		}

		_, err := CreateLead(context.Background(), mock, Lead{
			FirstName: "Jane", Email: "jane@x.test",
		})
		require.NoError(t, err)
	})
}
