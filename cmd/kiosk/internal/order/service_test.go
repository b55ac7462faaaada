// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package order

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jinterlante1206/KioskLocal/cmd/kiosk/internal/api"
	"github.com/jinterlante1206/KioskLocal/cmd/kiosk/internal/cart"
	"github.com/jinterlante1206/KioskLocal/cmd/kiosk/internal/events"
	"github.com/jinterlante1206/KioskLocal/cmd/kiosk/internal/pricing"
)

// fakeRequester answers canned responses keyed by "METHOD path".
type fakeRequester struct {
	mu        sync.Mutex
	responses map[string][]byte
	errs      map[string]error
	calls     []requesterCall
}

type requesterCall struct {
	method string
	path   string
	body   []byte
}

func newFakeRequester() *fakeRequester {
	return &fakeRequester{
		responses: make(map[string][]byte),
		errs:      make(map[string]error),
	}
}

func (f *fakeRequester) answer(method, path string, body []byte, err error) {
	f.responses[method+" "+path] = body
	if err != nil {
		f.errs[method+" "+path] = err
	}
}

func (f *fakeRequester) do(method, path string, body []byte) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, requesterCall{method: method, path: path, body: body})
	key := method + " " + path
	if err, ok := f.errs[key]; ok {
		return nil, err
	}
	return f.responses[key], nil
}

func (f *fakeRequester) GetJSON(ctx context.Context, path string, opts api.RequestOpts) ([]byte, error) {
	return f.do("GET", path, nil)
}

func (f *fakeRequester) PostJSON(ctx context.Context, path string, body []byte, opts api.RequestOpts) ([]byte, error) {
	return f.do("POST", path, body)
}

func (f *fakeRequester) PutJSON(ctx context.Context, path string, body []byte, opts api.RequestOpts) ([]byte, error) {
	return f.do("PUT", path, body)
}

func (f *fakeRequester) Delete(ctx context.Context, path string, opts api.RequestOpts) ([]byte, error) {
	return f.do("DELETE", path, nil)
}

// fakeInvalidator records invalidated prefixes.
type fakeInvalidator struct {
	mu       sync.Mutex
	prefixes []string
}

func (f *fakeInvalidator) InvalidatePattern(prefix string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prefixes = append(f.prefixes, prefix)
	return 1, nil
}

const orderJSON = `{"data":{"_id":"o1","orderNumber":"K0001","theaterId":"t1",
	"status":"pending","products":[{"_id":"l1","productId":"cola","name":"Cola","quantity":2,"price":120}],
	"subtotal":240,"taxAmount":11.43,"totalAmount":240}}`

func TestFindOrder(t *testing.T) {
	req := newFakeRequester()
	req.answer("GET", "/orders/theater/t1/K0001", []byte(orderJSON), nil)
	svc := NewService(req, nil, nil, "", nil)

	o, err := svc.FindOrder(context.Background(), "t1", "K0001")
	require.NoError(t, err)
	assert.Equal(t, "o1", o.ID)
	assert.Equal(t, "K0001", o.OrderNumber)
	assert.Equal(t, StatusPending, o.Status)
	require.Len(t, o.Items, 1)
	assert.Equal(t, "l1", o.Items[0].LineID)
}

func TestFindOrder_NotFound(t *testing.T) {
	req := newFakeRequester()
	req.answer("GET", "/orders/theater/t1/nope", nil, api.ErrNotFound)
	svc := NewService(req, nil, nil, "", nil)

	_, err := svc.FindOrder(context.Background(), "t1", "nope")
	assert.ErrorIs(t, err, ErrOrderNotFound)

	_, err = svc.FindOrder(context.Background(), "t1", "")
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestSubmitOrder_PayloadAndFanOut(t *testing.T) {
	req := newFakeRequester()
	req.answer("POST", "/orders", []byte(orderJSON), nil)
	inval := &fakeInvalidator{}
	bus := events.NewBus()
	bumpDir := t.TempDir()

	var published []events.Event
	bus.Subscribe(func(ev events.Event) { published = append(published, ev) })

	svc := NewService(req, inval, bus, bumpDir, nil)

	snap := cart.Snapshot{TheaterID: "t1", Lines: []cart.Line{
		{ID: "cola", Kind: cart.KindProduct, Name: "Cola", Size: "600 ML",
			UnitPrice: 120, Count: 2},
	}}
	totals := pricing.Totals{Subtotal: 240, Tax: 11.43, Total: 240}

	placed, err := svc.SubmitOrder(context.Background(), snap, totals)
	require.NoError(t, err)
	assert.Equal(t, "K0001", placed.OrderNumber)

	// The wire payload carries the cart lines and the client totals.
	require.Len(t, req.calls, 1)
	var sent map[string]any
	require.NoError(t, json.Unmarshal(req.calls[0].body, &sent))
	assert.Equal(t, "t1", sent["theaterId"])
	assert.Equal(t, 240.0, sent["totalAmount"])
	items := sent["products"].([]any)
	require.Len(t, items, 1)
	first := items[0].(map[string]any)
	assert.Equal(t, "cola", first["productId"])
	assert.Equal(t, "600 ML", first["productQuantity"])
	assert.Equal(t, 2.0, first["quantity"])

	// Fan-out: three cache patterns, the bump file, both bus events.
	assert.Equal(t, []string{"orders_t1", "products_t1", "cafeStock_t1"}, inval.prefixes)

	_, err = events.ReadBump(bumpDir, "t1")
	assert.NoError(t, err, "bump file should exist")

	require.Len(t, published, 2)
	assert.Equal(t, events.OrderUpdated, published[0].Type)
	assert.Equal(t, events.StockUpdated, published[1].Type)
	assert.Equal(t, "t1", published[0].TheaterID)
}

func TestSubmitOrder_ServerErrorSurfaces(t *testing.T) {
	req := newFakeRequester()
	req.answer("POST", "/orders", nil, api.ErrServer)
	inval := &fakeInvalidator{}
	svc := NewService(req, inval, nil, "", nil)

	_, err := svc.SubmitOrder(context.Background(), cart.Snapshot{TheaterID: "t1"}, pricing.Totals{})
	require.Error(t, err)
	assert.ErrorIs(t, err, api.ErrServer)
	assert.Contains(t, err.Error(), "try again")
	assert.Empty(t, inval.prefixes, "no fan-out on failure")
}

func TestCancelOrder(t *testing.T) {
	req := newFakeRequester()
	req.answer("PUT", "/orders/theater/t1/o1/status", []byte(`{}`), nil)
	inval := &fakeInvalidator{}
	svc := NewService(req, inval, nil, t.TempDir(), nil)

	o := &Order{ID: "o1", TheaterID: "t1", Status: StatusPending}
	require.NoError(t, svc.CancelOrder(context.Background(), o))
	assert.Equal(t, StatusCancelled, o.Status)
	assert.Len(t, inval.prefixes, 3)

	// The status body asked for cancellation.
	var body map[string]string
	require.NoError(t, json.Unmarshal(req.calls[0].body, &body))
	assert.Equal(t, "cancelled", body["status"])
}

func TestCancelOrder_ImmutableStatuses(t *testing.T) {
	svc := NewService(newFakeRequester(), nil, nil, "", nil)

	for _, status := range []Status{StatusCompleted, StatusCancelled} {
		o := &Order{ID: "o1", TheaterID: "t1", Status: status}
		err := svc.CancelOrder(context.Background(), o)
		assert.ErrorIs(t, err, ErrOrderImmutable, "status %s", status)
	}
}

func TestCancelLine_RefetchesOrder(t *testing.T) {
	req := newFakeRequester()
	req.answer("DELETE", "/orders/theater/t1/o1/products/l1", []byte(`{}`), nil)
	req.answer("GET", "/orders/theater/t1/o1", []byte(orderJSON), nil)
	inval := &fakeInvalidator{}
	svc := NewService(req, inval, nil, "", nil)

	o := &Order{ID: "o1", TheaterID: "t1", Status: StatusPending}
	refreshed, err := svc.CancelLine(context.Background(), o, "l1")
	require.NoError(t, err)
	require.NotNil(t, refreshed)
	assert.Equal(t, "o1", refreshed.ID)
	assert.Len(t, inval.prefixes, 3)
}

// A 404 on the line means someone beat us to it; that is success.
func TestCancelLine_AlreadyGoneIsSuccess(t *testing.T) {
	req := newFakeRequester()
	req.answer("DELETE", "/orders/theater/t1/o1/products/l1", nil, api.ErrNotFound)
	req.answer("GET", "/orders/theater/t1/o1", []byte(orderJSON), nil)
	inval := &fakeInvalidator{}
	svc := NewService(req, inval, nil, "", nil)

	o := &Order{ID: "o1", TheaterID: "t1", Status: StatusInProgress}
	refreshed, err := svc.CancelLine(context.Background(), o, "l1")
	require.NoError(t, err)
	require.NotNil(t, refreshed)
	assert.Len(t, inval.prefixes, 3, "fan-out runs even on the 404 path")
}

func TestCancelLine_RefetchFailureIsNotAnError(t *testing.T) {
	req := newFakeRequester()
	req.answer("DELETE", "/orders/theater/t1/o1/products/l1", []byte(`{}`), nil)
	req.answer("GET", "/orders/theater/t1/o1", nil, api.ErrTimeout)
	svc := NewService(req, nil, nil, "", nil)

	o := &Order{ID: "o1", TheaterID: "t1", Status: StatusPending}
	refreshed, err := svc.CancelLine(context.Background(), o, "l1")
	assert.NoError(t, err)
	assert.Nil(t, refreshed)
}

func TestDecodeOrder_BareAndEnveloped(t *testing.T) {
	bare := []byte(`{"_id":"o2","orderNumber":"K0002","status":"pending"}`)
	o, err := decodeOrder(bare)
	require.NoError(t, err)
	assert.Equal(t, "o2", o.ID)

	_, err = decodeOrder([]byte(`{"data":{"orderNumber":"no-id"}}`))
	assert.Error(t, err)
}

func TestOrder_Mutable(t *testing.T) {
	assert.True(t, (&Order{Status: StatusPending}).Mutable())
	assert.True(t, (&Order{Status: StatusInProgress}).Mutable())
	assert.False(t, (&Order{Status: StatusCompleted}).Mutable())
	assert.False(t, (&Order{Status: StatusCancelled}).Mutable())
}
