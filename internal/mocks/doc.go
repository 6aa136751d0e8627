// Package mocks provides testify mocks of the store, mailer and event
// interfaces, shared by the test suites of several packages.
//
//	users := new(mocks.UserStore)
//	users.On("GetByID", mock.Anything, id).Return(user, nil)
//	defer users.AssertExpectations(t)
package mocks
