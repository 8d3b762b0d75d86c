package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/Ankish8/College-Management-sub001/internal/dto"
	"github.com/Ankish8/College-Management-sub001/internal/models"
	"github.com/Ankish8/College-Management-sub001/pkg/config"
	appErrors "github.com/Ankish8/College-Management-sub001/pkg/errors"
)

// PreviewService materialises a dry-run: validator verdict, proposed changes
// bucketed into create/update/delete, a conflict visualization, resource
// impact deltas, and a fixed-formula duration estimate. Never writes.
type PreviewService struct {
	validator *OperationValidator
	entries   timetableStore
	cfg       config.EngineConfig
	logger    *zap.Logger
}

// NewPreviewService constructs the preview generator.
func NewPreviewService(validator *OperationValidator, entries timetableStore, cfg config.EngineConfig, logger *zap.Logger) *PreviewService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PreviewService{validator: validator, entries: entries, cfg: cfg, logger: logger}
}

// Generate produces the preview for the given parameters.
func (s *PreviewService) Generate(ctx context.Context, params models.OperationParams) (*dto.PreviewResponse, error) {
	validation, err := s.validator.Validate(ctx, params)
	if err != nil {
		return nil, err
	}

	resp := &dto.PreviewResponse{
		Validation: *validation,
		Creates:    []dto.ProposedChange{},
		Updates:    []dto.ProposedChange{},
		Deletes:    []dto.ProposedChange{},
		ResourceImpact: dto.ResourceImpact{
			FacultyLoadDelta: map[string]int{},
			BatchLoadDelta:   map[string]int{},
		},
		EstimatedDurationSeconds: s.estimateDuration(params.Operation, validation.AffectedCount),
	}
	if len(validation.DetectedConflicts) > 0 {
		resp.ConflictVisualization = &dto.ConflictVisualization{
			TotalCount:    len(validation.DetectedConflicts),
			CriticalCount: countCritical(validation.DetectedConflicts),
			Conflicts:     validation.DetectedConflicts,
		}
	}
	if !validation.IsValid {
		return resp, nil
	}

	switch params.Operation {
	case models.OperationClone:
		err = s.previewClone(ctx, params.Clone, resp)
	case models.OperationFacultyReplace:
		err = s.previewFacultyReplace(ctx, params.FacultyReplace, resp)
	case models.OperationReschedule:
		err = s.previewReschedule(ctx, params.Reschedule, resp)
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to build preview")
	}
	return resp, nil
}

func (s *PreviewService) previewClone(ctx context.Context, params *models.CloneParams, resp *dto.PreviewResponse) error {
	source, err := s.entries.ListActiveByBatch(ctx, params.SourceBatchID)
	if err != nil {
		return err
	}
	affected := filterCloneEntries(source, params.DateRange)

	target, err := s.entries.ListActiveByBatch(ctx, params.TargetBatchID)
	if err != nil {
		return err
	}
	occupied := make(map[string]models.TimetableEntry, len(target))
	for _, t := range target {
		occupied[t.SlotKey()] = t
	}

	for _, e := range affected {
		clone := e
		clone.BatchID = params.TargetBatchID
		change := proposedChange(&clone, fmt.Sprintf("clone entry %s into target batch", e.ID))
		if existing, taken := occupied[clone.SlotKey()]; taken {
			if params.HandleConflicts == models.ConflictPolicyOverride {
				resp.Deletes = append(resp.Deletes, proposedChange(&existing, "deactivate entry displaced by override"))
				resp.Creates = append(resp.Creates, change)
			}
			// skip policy: collision produces no change
			continue
		}
		resp.Creates = append(resp.Creates, change)
		resp.ResourceImpact.BatchLoadDelta[params.TargetBatchID]++
		if params.PreserveFaculty {
			resp.ResourceImpact.FacultyLoadDelta[e.FacultyID]++
		}
	}
	return nil
}

func (s *PreviewService) previewFacultyReplace(ctx context.Context, params *models.FacultyReplaceParams, resp *dto.PreviewResponse) error {
	affected, err := s.entries.ListForFacultyReplace(ctx, params.CurrentFacultyID, params.BatchID, params.SubjectID, params.EffectiveFrom)
	if err != nil {
		return err
	}
	for _, e := range affected {
		next := e
		next.FacultyID = params.NewFacultyID
		resp.Updates = append(resp.Updates, proposedChange(&next, fmt.Sprintf("reassign entry %s to new faculty", e.ID)))
		resp.ResourceImpact.FacultyLoadDelta[params.CurrentFacultyID]--
		resp.ResourceImpact.FacultyLoadDelta[params.NewFacultyID]++
	}
	return nil
}

func (s *PreviewService) previewReschedule(ctx context.Context, params *models.RescheduleParams, resp *dto.PreviewResponse) error {
	affected, err := s.entries.ListDatedInRange(ctx, params.SourceRange.Start, params.SourceRange.End, params.BatchID)
	if err != nil {
		return err
	}
	for _, e := range affected {
		targetDate := MapDate(*e.Date, params.SourceRange, params.TargetRange, params.MoveType)
		if params.ExcludeWeekends {
			targetDate, _ = AdvanceWeekend(targetDate)
		}
		next := e
		next.Date = &targetDate
		next.DayOfWeek = models.DayOfWeekFromDate(targetDate)
		resp.Updates = append(resp.Updates, proposedChange(&next,
			fmt.Sprintf("move entry %s from %s to %s", e.ID, e.Date.Format("2006-01-02"), targetDate.Format("2006-01-02"))))
	}
	return nil
}

// estimateDuration applies ceil(affected/throughput)*60 with a per-kind
// throughput constant; a replacement touches less state than a clone.
func (s *PreviewService) estimateDuration(kind models.OperationType, affected int) int {
	if affected <= 0 {
		return 0
	}
	var throughput int
	switch kind {
	case models.OperationClone:
		throughput = s.cfg.CloneThroughput
	case models.OperationFacultyReplace:
		throughput = s.cfg.ReplaceThroughput
	case models.OperationReschedule:
		throughput = s.cfg.RescheduleThroughput
	}
	if throughput <= 0 {
		throughput = 20
	}
	return ((affected + throughput - 1) / throughput) * 60
}

func proposedChange(e *models.TimetableEntry, description string) dto.ProposedChange {
	return dto.ProposedChange{
		EntryID:     e.ID,
		BatchID:     e.BatchID,
		SubjectID:   e.SubjectID,
		FacultyID:   e.FacultyID,
		TimeSlotID:  e.TimeSlotID,
		DayOfWeek:   string(e.DayOfWeek),
		Date:        e.Date,
		Description: description,
	}
}

func countCritical(conflicts []models.EventConflict) int {
	n := 0
	for _, c := range conflicts {
		if c.Severity == models.SeverityCritical {
			n++
		}
	}
	return n
}
