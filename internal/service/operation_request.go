package service

import (
	"fmt"
	"strings"

	"github.com/Ankish8/College-Management-sub001/internal/dto"
	"github.com/Ankish8/College-Management-sub001/internal/models"
	appErrors "github.com/Ankish8/College-Management-sub001/pkg/errors"
)

// buildOperationParams translates the common wire request into the typed
// parameter union. All structural validation happens here; referential checks
// belong to the validator.
func buildOperationParams(req dto.BulkOperationRequest) (models.OperationParams, error) {
	switch strings.ToLower(strings.TrimSpace(req.Operation)) {
	case "clone", "clone_timetable":
		return buildCloneParams(req)
	case "faculty_replace", "replace_faculty":
		return buildFacultyReplaceParams(req)
	case "reschedule", "bulk_reschedule":
		return buildRescheduleParams(req)
	default:
		return models.OperationParams{}, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported operation: %s", req.Operation))
	}
}

func buildCloneParams(req dto.BulkOperationRequest) (models.OperationParams, error) {
	if req.SourceData == nil || req.SourceData.BatchID == nil {
		return models.OperationParams{}, appErrors.Clone(appErrors.ErrValidation, "sourceData.batchId is required for clone")
	}
	if req.TargetData == nil || req.TargetData.BatchID == nil {
		return models.OperationParams{}, appErrors.Clone(appErrors.ErrValidation, "targetData.batchId is required for clone")
	}
	params := models.CloneParams{
		SourceBatchID:   *req.SourceData.BatchID,
		TargetBatchID:   *req.TargetData.BatchID,
		PreserveFaculty: req.Options.PreserveFaculty,
		HandleConflicts: resolveConflictPolicy(req.Options),
	}
	if req.SourceData.DateRange != nil {
		r, err := toDateRange(*req.SourceData.DateRange)
		if err != nil {
			return models.OperationParams{}, err
		}
		params.DateRange = &r
	}
	return models.OperationParams{Operation: models.OperationClone, Clone: &params}, nil
}

func buildFacultyReplaceParams(req dto.BulkOperationRequest) (models.OperationParams, error) {
	if req.SourceData == nil || req.SourceData.FacultyID == nil {
		return models.OperationParams{}, appErrors.Clone(appErrors.ErrValidation, "sourceData.facultyId is required for faculty replace")
	}
	if req.TargetData == nil || req.TargetData.FacultyID == nil {
		return models.OperationParams{}, appErrors.Clone(appErrors.ErrValidation, "targetData.facultyId is required for faculty replace")
	}
	params := models.FacultyReplaceParams{
		CurrentFacultyID: *req.SourceData.FacultyID,
		NewFacultyID:     *req.TargetData.FacultyID,
		BatchID:          req.SourceData.BatchID,
		SubjectID:        req.SourceData.SubjectID,
		EffectiveFrom:    req.Options.EffectiveFrom,
		MaintainWorkload: req.Options.MaintainWorkload,
	}
	return models.OperationParams{Operation: models.OperationFacultyReplace, FacultyReplace: &params}, nil
}

func buildRescheduleParams(req dto.BulkOperationRequest) (models.OperationParams, error) {
	if req.SourceData == nil || req.SourceData.DateRange == nil {
		return models.OperationParams{}, appErrors.Clone(appErrors.ErrValidation, "sourceData.dateRange is required for reschedule")
	}
	if req.TargetData == nil || req.TargetData.DateRange == nil {
		return models.OperationParams{}, appErrors.Clone(appErrors.ErrValidation, "targetData.dateRange is required for reschedule")
	}
	source, err := toDateRange(*req.SourceData.DateRange)
	if err != nil {
		return models.OperationParams{}, err
	}
	target, err := toDateRange(*req.TargetData.DateRange)
	if err != nil {
		return models.OperationParams{}, err
	}
	moveType := models.MoveType(strings.ToLower(strings.TrimSpace(req.Options.MoveType)))
	switch moveType {
	case "":
		moveType = models.MoveTypeShift
	case models.MoveTypeShift, models.MoveTypeMap, models.MoveTypeRedistribute:
	default:
		return models.OperationParams{}, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported moveType: %s", req.Options.MoveType))
	}
	params := models.RescheduleParams{
		SourceRange:      source,
		TargetRange:      target,
		BatchID:          req.SourceData.BatchID,
		MoveType:         moveType,
		ExcludeWeekends:  req.Options.ExcludeWeekends,
		RespectBlackouts: req.Options.RespectBlackouts,
	}
	return models.OperationParams{Operation: models.OperationReschedule, Reschedule: &params}, nil
}

// resolveConflictPolicy honours handleConflicts when given and falls back to
// the legacy preserveConflicts/updateExisting aliases.
func resolveConflictPolicy(opts dto.OperationOptions) models.ConflictPolicy {
	switch strings.ToLower(strings.TrimSpace(opts.HandleConflicts)) {
	case string(models.ConflictPolicyOverride):
		return models.ConflictPolicyOverride
	case string(models.ConflictPolicySkip):
		return models.ConflictPolicySkip
	}
	if opts.UpdateExisting != nil && *opts.UpdateExisting {
		return models.ConflictPolicyOverride
	}
	if opts.PreserveConflicts != nil && *opts.PreserveConflicts {
		return models.ConflictPolicySkip
	}
	return models.ConflictPolicySkip
}

func toDateRange(p dto.DateRangePayload) (models.DateRange, error) {
	if p.End.Before(p.Start) {
		return models.DateRange{}, appErrors.Clone(appErrors.ErrValidation, "dateRange end must not precede start")
	}
	return models.DateRange{Start: p.Start, End: p.End}, nil
}
