// Package mocks provides shared test doubles for the store interfaces and
// service collaborators.
//
// Store mocks keep their data in memory so tests can run whole flows, and
// expose function fields to override single methods:
//
//	users := mocks.NewMockUserStore()
//	users.GetByIDFn = func(ctx context.Context, id int64) (*domain.User, error) {
//	    return nil, errors.New("connection reset")
//	}
//
// Returned entities are copies; callers must Update to change stored state.
// WithTx returns the same mock, so transactional code sees one data set.
package mocks
