package statuses

import (
	"context"
	"testing"

	"github.com/BearBump/CarTrack/internal/apperr"
	"github.com/BearBump/CarTrack/internal/models"
	"github.com/BearBump/CarTrack/internal/services/statuses/mocks"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// countingInvalidator считает сбросы кэша отслеживания.
type countingInvalidator struct {
	calls int
}

func (c *countingInvalidator) InvalidateAllTracking(ctx context.Context) { c.calls++ }

type ServiceSuite struct {
	suite.Suite

	repo *mocks.MockRepository
	inv  *countingInvalidator
	svc  *Service
}

func (s *ServiceSuite) SetupTest() {
	s.repo = &mocks.MockRepository{}
	s.inv = &countingInvalidator{}
	s.svc = New(s.repo, WithTrackingInvalidator(s.inv))
}

func (s *ServiceSuite) TestCreate_EmptyNameRejected() {
	_, err := s.svc.Create(context.Background(), models.StatusCreateInput{Name: "   "})
	s.Require().ErrorIs(err, apperr.ErrValidation)
	s.repo.AssertNotCalled(s.T(), "CreateStatus", mock.Anything, mock.Anything)
}

func (s *ServiceSuite) TestCreate_TrimsAndCallsRepo() {
	s.repo.On("CreateStatus", mock.Anything, models.StatusCreateInput{Name: "Customs"}).
		Return(&models.Status{ID: 1, Name: "Customs", Order: 3}, nil).
		Once()

	st, err := s.svc.Create(context.Background(), models.StatusCreateInput{Name: " Customs "})
	s.Require().NoError(err)
	s.Require().Equal(3, st.Order)
	s.repo.AssertExpectations(s.T())
	s.Require().Equal(1, s.inv.calls)
}

func (s *ServiceSuite) TestReorder_DuplicateIDs() {
	err := s.svc.Reorder(context.Background(), []uint64{1, 2, 1})
	s.Require().ErrorIs(err, apperr.ErrValidation)
	s.repo.AssertNotCalled(s.T(), "ReorderStatuses", mock.Anything, mock.Anything)
}

func (s *ServiceSuite) TestReorder_PassesThroughNotFound() {
	s.repo.On("ReorderStatuses", mock.Anything, []uint64{3, 1}).
		Return(apperr.NotFound("status 3 not found")).
		Once()

	err := s.svc.Reorder(context.Background(), []uint64{3, 1})
	s.Require().ErrorIs(err, apperr.ErrNotFound)
	s.Require().Zero(s.inv.calls)
}

func (s *ServiceSuite) TestReorder_FlushesTrackingCache() {
	s.repo.On("ReorderStatuses", mock.Anything, []uint64{2, 1}).Return(nil).Once()

	s.Require().NoError(s.svc.Reorder(context.Background(), []uint64{2, 1}))
	s.Require().Equal(1, s.inv.calls)
}

func (s *ServiceSuite) TestUpdate_FlushesTrackingCache() {
	name := "Port of Bremerhaven"
	s.repo.On("UpdateStatus", mock.Anything, uint64(4), models.StatusUpdateInput{Name: &name}).
		Return(&models.Status{ID: 4, Name: name}, nil).
		Once()

	st, err := s.svc.Update(context.Background(), 4, models.StatusUpdateInput{Name: &name})
	s.Require().NoError(err)
	s.Require().Equal(name, st.Name)
	s.Require().Equal(1, s.inv.calls)
}

func (s *ServiceSuite) TestDelete_InUse() {
	s.repo.On("GetStatus", mock.Anything, uint64(5)).Return(&models.Status{ID: 5}, nil).Once()
	s.repo.On("CountShipmentsWithStatus", mock.Anything, uint64(5)).Return(2, nil).Once()

	err := s.svc.Delete(context.Background(), 5)
	s.Require().ErrorIs(err, apperr.ErrConflict)
	s.Require().Equal("Cannot delete: 2 shipment(s) are using this status", err.Error())
	s.repo.AssertNotCalled(s.T(), "DeleteStatus", mock.Anything, mock.Anything)
	s.Require().Zero(s.inv.calls)
}

func (s *ServiceSuite) TestDelete_Unknown() {
	s.repo.On("GetStatus", mock.Anything, uint64(9)).Return(nil, apperr.NotFound("status 9 not found")).Once()

	err := s.svc.Delete(context.Background(), 9)
	s.Require().ErrorIs(err, apperr.ErrNotFound)
}

func (s *ServiceSuite) TestDelete_Unused() {
	s.repo.On("GetStatus", mock.Anything, uint64(5)).Return(&models.Status{ID: 5}, nil).Once()
	s.repo.On("CountShipmentsWithStatus", mock.Anything, uint64(5)).Return(0, nil).Once()
	s.repo.On("DeleteStatus", mock.Anything, uint64(5)).Return(nil).Once()

	s.Require().NoError(s.svc.Delete(context.Background(), 5))
	s.repo.AssertExpectations(s.T())
	s.Require().Equal(1, s.inv.calls)
}

func (s *ServiceSuite) TestUpdate_EmptyNameRejected() {
	empty := ""
	_, err := s.svc.Update(context.Background(), 1, models.StatusUpdateInput{Name: &empty})
	s.Require().ErrorIs(err, apperr.ErrValidation)
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}
