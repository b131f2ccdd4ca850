package engine

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/leapstack-labs/leapviz/internal/testutil"
	"github.com/leapstack-labs/leapviz/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedCustomersOrders(t *testing.T, f *fixture) (customers, orders string) {
	t.Helper()
	customers = testutil.SeedDataset(t, f.store, "customers",
		[]core.Column{
			{Name: "id", DisplayName: "Id", DataType: core.DataTypeInt, IsRequired: true, Order: 0},
			{Name: "name", DisplayName: "Name", DataType: core.DataTypeString, Description: "Customer name", Order: 1},
		},
		[]core.Row{
			{"id": json.Number("1"), "name": "Ann"},
			{"id": json.Number("2"), "name": "Bui"},
			{"id": json.Number("3"), "name": "Cao"},
		},
		testutil.WithOwner("ana"))
	orders = testutil.SeedDataset(t, f.store, "orders",
		[]core.Column{
			{Name: "customer_id", DisplayName: "Customer", DataType: core.DataTypeInt, Order: 0},
			{Name: "total", DisplayName: "Total", DataType: core.DataTypeDecimal, Order: 1},
		},
		[]core.Row{
			{"customer_id": json.Number("1"), "total": json.Number("9.5")},
			{"customer_id": json.Number("1"), "total": json.Number("3")},
			{"customer_id": json.Number("4"), "total": json.Number("1")},
		},
		testutil.WithOwner("ana"))
	return customers, orders
}

func TestMerge(t *testing.T) {
	f := setupEngine(t)
	ctx := context.Background()
	customers, orders := seedCustomersOrders(t, f)

	tests := []struct {
		mode     core.MergeType
		wantRows int
	}{
		{core.MergeInner, 2},
		{core.MergeLeft, 4},
		{core.MergeRight, 3},
		{core.MergeFull, 5},
		{core.MergeCross, 9},
	}

	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			resp, err := f.engine.Merge(ctx, "ana", core.DatasetMergeRequest{
				NewDatasetName: "merged " + string(tt.mode),
				LeftDatasetID:  customers,
				RightDatasetID: orders,
				JoinConditions: []core.JoinCondition{{LeftColumn: "id", RightColumn: "customer_id"}},
				MergeType:      tt.mode,
			})
			require.NoError(t, err)
			require.Equal(t, core.ImportSuccess, resp.Status, resp.Message)

			ds, err := f.engine.GetDatasetInfo(ctx, resp.DatasetID)
			require.NoError(t, err)
			assert.Equal(t, tt.wantRows, ds.TotalRows)
			assert.Equal(t, core.StatusCompleted, ds.Status)
			assert.Equal(t, core.SourceMerged, ds.SourceType)
			assert.Equal(t, "Merged from customers and orders", ds.SourceName)
			assert.Equal(t, "ana", ds.CreatedBy)
		})
	}
}

func TestMerge_Schema(t *testing.T) {
	f := setupEngine(t)
	ctx := context.Background()
	customers, orders := seedCustomersOrders(t, f)

	resp, err := f.engine.Merge(ctx, "ana", core.DatasetMergeRequest{
		NewDatasetName: "joined",
		LeftDatasetID:  customers,
		RightDatasetID: orders,
		JoinConditions: []core.JoinCondition{{LeftColumn: "id", RightColumn: "customer_id", Operator: "eq"}},
	})
	require.NoError(t, err)

	ds, err := f.engine.GetDatasetInfo(ctx, resp.DatasetID)
	require.NoError(t, err)

	names := make([]string, len(ds.Schema))
	for i, c := range ds.Schema {
		names[i] = c.Name
		assert.Equal(t, i, c.Order)
	}
	assert.Equal(t, []string{"Left_id", "Left_name", "Right_customer_id", "Right_total"}, names)
	assert.Equal(t, "customers.Name", ds.Schema[1].DisplayName)
	assert.Equal(t, "From customers: Customer name", ds.Schema[1].Description)

	res, err := f.engine.QueryData(ctx, resp.DatasetID, core.QueryParameters{SortBy: "Right_total"})
	require.NoError(t, err)
	require.Len(t, res.Items, 2)
	assert.Equal(t, "Ann", res.Items[0]["Left_name"])
	assert.Equal(t, json.Number("3"), res.Items[0]["Right_total"])
}

func TestMerge_Errors(t *testing.T) {
	f := setupEngine(t)
	ctx := context.Background()
	customers, orders := seedCustomersOrders(t, f)
	foreign := testutil.SeedDataset(t, f.store, "foreign", testutil.SalesSchema(), testutil.SalesRows(), testutil.WithOwner("bo"))

	valid := core.DatasetMergeRequest{
		NewDatasetName: "m",
		LeftDatasetID:  customers,
		RightDatasetID: orders,
		JoinConditions: []core.JoinCondition{{LeftColumn: "id", RightColumn: "customer_id"}},
	}

	tests := []struct {
		name   string
		modify func(*core.DatasetMergeRequest)
		want   error
	}{
		{"missing name", func(r *core.DatasetMergeRequest) { r.NewDatasetName = " " }, core.ErrInvalidArgument},
		{"missing id", func(r *core.DatasetMergeRequest) { r.RightDatasetID = "" }, core.ErrInvalidArgument},
		{"bad mode", func(r *core.DatasetMergeRequest) { r.MergeType = "outer" }, core.ErrInvalidArgument},
		{"bad operator", func(r *core.DatasetMergeRequest) { r.JoinConditions[0].Operator = "near" }, core.ErrInvalidArgument},
		{"unknown dataset", func(r *core.DatasetMergeRequest) { r.LeftDatasetID = "nope" }, core.ErrNotFound},
		{"foreign dataset", func(r *core.DatasetMergeRequest) { r.RightDatasetID = foreign }, core.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid
			req.JoinConditions = append([]core.JoinCondition(nil), valid.JoinConditions...)
			tt.modify(&req)
			_, err := f.engine.Merge(ctx, "ana", req)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestMerge_NoMatchesLeavesNothing(t *testing.T) {
	f := setupEngine(t)
	ctx := context.Background()
	customers, orders := seedCustomersOrders(t, f)

	resp, err := f.engine.Merge(ctx, "ana", core.DatasetMergeRequest{
		NewDatasetName: "empty",
		LeftDatasetID:  customers,
		RightDatasetID: orders,
		JoinConditions: []core.JoinCondition{{LeftColumn: "name", RightColumn: "total"}},
	})
	require.NoError(t, err)
	assert.Equal(t, core.ImportError, resp.Status)
	assert.Empty(t, resp.DatasetID)
	assert.Contains(t, resp.Message, "no matching data")

	page, err := f.engine.ListDatasets(ctx, "ana", 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 2, page.TotalCount)
}

// failingStore fails the first row batch of every unit of work.
type failingStore struct {
	core.RowStore
}

func (s failingStore) Begin(ctx context.Context) (core.UnitOfWork, error) {
	uow, err := s.RowStore.Begin(ctx)
	if err != nil {
		return nil, err
	}
	return failingUnit{uow}, nil
}

type failingUnit struct {
	core.UnitOfWork
}

func (failingUnit) AppendRowBatch(context.Context, string, []core.Row) error {
	return errors.New("disk full")
}

func TestMerge_WriteFailureRollsBack(t *testing.T) {
	f := setupEngine(t)
	ctx := context.Background()
	customers, orders := seedCustomersOrders(t, f)

	eng, err := New(Config{Store: failingStore{f.store}, Logger: testutil.NewTestLogger(t)})
	require.NoError(t, err)

	resp, err := eng.Merge(ctx, "ana", core.DatasetMergeRequest{
		NewDatasetName: "broken",
		LeftDatasetID:  customers,
		RightDatasetID: orders,
		MergeType:      core.MergeCross,
	})
	require.NoError(t, err)
	assert.Equal(t, core.ImportError, resp.Status)
	assert.Contains(t, resp.Message, "disk full")

	_, total, err := f.store.ListDatasets(ctx, "", 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
}
