package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"bootcamp_backend/internal/model"
	"bootcamp_backend/internal/repository"
	"bootcamp_backend/internal/util"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

const dashboardCacheTTL = 5 * time.Minute

// ProgressService derives completion percentages from the ledger. All of
// its reads are side-effect free; only RecomputePathwayProgress writes,
// and that runs inside the transaction of whichever approval transition
// triggered it.
type ProgressService struct {
	PathwayRepo          *repository.PathwayRepository
	ModuleRepo           *repository.ModuleRepository
	ResourceRepo         *repository.ResourceRepository
	CompletionRepo       *repository.ResourceCompletionRepository
	SubmissionRepo       *repository.SubmissionRepository
	ModuleCompletionRepo *repository.ModuleCompletionRepository
	ProgressRepo         *repository.UserProgressRepository
	Redis                *redis.Client
}

func NewProgressService(
	pathwayRepo *repository.PathwayRepository,
	moduleRepo *repository.ModuleRepository,
	resourceRepo *repository.ResourceRepository,
	completionRepo *repository.ResourceCompletionRepository,
	submissionRepo *repository.SubmissionRepository,
	moduleCompletionRepo *repository.ModuleCompletionRepository,
	progressRepo *repository.UserProgressRepository,
	rdb *redis.Client,
) *ProgressService {
	return &ProgressService{
		PathwayRepo:          pathwayRepo,
		ModuleRepo:           moduleRepo,
		ResourceRepo:         resourceRepo,
		CompletionRepo:       completionRepo,
		SubmissionRepo:       submissionRepo,
		ModuleCompletionRepo: moduleCompletionRepo,
		ProgressRepo:         progressRepo,
		Redis:                rdb,
	}
}

// ModuleProgressResult is the rollup for one (user, module).
type ModuleProgressResult struct {
	Percent            int      `json:"percent"`
	AllComplete        bool     `json:"allComplete"`
	MissingResourceIDs []string `json:"missingResourceIds"`
	MissingUploadIDs   []string `json:"missingUploadIds"`
}

// PathwayProgressResult is the rollup for one (user, pathway). Only
// approved module completions count.
type PathwayProgressResult struct {
	Percent          int `json:"percent"`
	CompletedModules int `json:"completedModules"`
	TotalModules     int `json:"totalModules"`
}

// ResourceStatus reads the ledger; a resource without a row is
// not_started.
func (s *ProgressService) ResourceStatus(userID uint, resourceID string) (model.CompletionStatus, error) {
	completion, err := s.CompletionRepo.FindByUserAndResource(userID, resourceID)
	if err == gorm.ErrRecordNotFound {
		return model.StatusNotStarted, nil
	}
	if err != nil {
		return "", err
	}
	return completion.Status, nil
}

// ModuleProgress computes the module rollup. Percent uses floor integer
// division (1 of 3 done is 33, never 34). AllComplete additionally needs
// every upload-requiring resource to hold at least one live submission.
// A module with zero resources is vacuously 100% complete.
func (s *ProgressService) ModuleProgress(userID uint, moduleID string) (*ModuleProgressResult, error) {
	resources, err := s.ResourceRepo.FindByModule(moduleID)
	if err != nil {
		return nil, err
	}

	result := &ModuleProgressResult{
		MissingResourceIDs: []string{},
		MissingUploadIDs:   []string{},
	}

	if len(resources) == 0 {
		result.Percent = 100
		result.AllComplete = true
		return result, nil
	}

	completions, err := s.CompletionRepo.ListByModule(userID, moduleID)
	if err != nil {
		return nil, err
	}

	done := 0
	for _, resource := range resources {
		completion, ok := completions[resource.ID]
		if ok && completion.Status.Counted() {
			done++
		} else {
			result.MissingResourceIDs = append(result.MissingResourceIDs, resource.ID)
		}

		if resource.RequiresUpload && (!ok || completion.SubmissionCount == 0) {
			result.MissingUploadIDs = append(result.MissingUploadIDs, resource.ID)
		}
	}

	result.Percent = 100 * done / len(resources)
	result.AllComplete = result.Percent == 100 && len(result.MissingUploadIDs) == 0
	return result, nil
}

// PathwayProgress counts approved modules only: pending or rejected
// completions never advance the student.
func (s *ProgressService) PathwayProgress(userID uint, pathwayID string) (*PathwayProgressResult, error) {
	total, err := s.ModuleRepo.CountByPathway(pathwayID)
	if err != nil {
		return nil, err
	}

	approved, err := s.ModuleCompletionRepo.CountApproved(userID, pathwayID)
	if err != nil {
		return nil, err
	}

	result := &PathwayProgressResult{
		CompletedModules: int(approved),
		TotalModules:     int(total),
	}
	if total > 0 {
		result.Percent = int(100 * approved / total)
	}
	return result, nil
}

// ModuleState is the read surface exposed to the HTTP layer.
type ModuleState struct {
	ModuleID         string               `json:"moduleId"`
	ApprovalStatus   model.ApprovalStatus `json:"approvalStatus"`
	Percent          int                  `json:"percent"`
	MissingUploadIDs []string             `json:"missingUploadIds"`
	ReviewComments   string               `json:"reviewComments,omitempty"`
}

func (s *ProgressService) GetModuleState(userID uint, moduleID string) (*ModuleState, error) {
	if _, err := s.ModuleRepo.FindByID(moduleID); err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, util.ErrModuleNotFound
		}
		return nil, err
	}

	mp, err := s.ModuleProgress(userID, moduleID)
	if err != nil {
		return nil, err
	}

	state := &ModuleState{
		ModuleID:         moduleID,
		ApprovalStatus:   model.ApprovalNotSubmitted,
		Percent:          mp.Percent,
		MissingUploadIDs: mp.MissingUploadIDs,
	}

	completion, err := s.ModuleCompletionRepo.FindByUserAndModule(userID, moduleID)
	if err == nil {
		state.ApprovalStatus = completion.ApprovalStatus
		state.ReviewComments = completion.ReviewComments
	} else if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	return state, nil
}

func (s *ProgressService) GetPathwayState(userID uint, pathwayID string) (*PathwayProgressResult, error) {
	if _, err := s.PathwayRepo.FindByID(pathwayID); err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, util.ErrPathwayNotFound
		}
		return nil, err
	}
	return s.PathwayProgress(userID, pathwayID)
}

// ListPathways returns the pathway catalog.
func (s *ProgressService) ListPathways() ([]model.Pathway, error) {
	return s.PathwayRepo.FindAll()
}

// ModuleWithCompletion decorates a catalog module with the user's
// approval state for pathway detail pages.
type ModuleWithCompletion struct {
	model.Module
	ApprovalStatus model.ApprovalStatus `json:"approvalStatus"`
	Completed      bool                 `json:"completed"`
}

type PathwayDetail struct {
	Pathway    *model.Pathway         `json:"pathway"`
	Progress   *model.UserProgress    `json:"progress"`
	Modules    []ModuleWithCompletion `json:"modules"`
	NextModule *model.Module          `json:"nextModule,omitempty"`
}

// GetPathwayDetail returns the pathway with per-module completion status
// and the next unapproved module, creating the progress row on first
// access.
func (s *ProgressService) GetPathwayDetail(userID uint, pathwayID string) (*PathwayDetail, error) {
	pathway, err := s.PathwayRepo.FindByID(pathwayID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, util.ErrPathwayNotFound
		}
		return nil, err
	}

	progress, err := s.ensureProgressRow(userID, pathwayID)
	if err != nil {
		return nil, err
	}

	modules, err := s.ModuleRepo.FindByPathway(pathwayID)
	if err != nil {
		return nil, err
	}

	completions, err := s.ModuleCompletionRepo.ListByUser(userID, pathwayID)
	if err != nil {
		return nil, err
	}
	statusByModule := make(map[string]model.ApprovalStatus, len(completions))
	for _, c := range completions {
		statusByModule[c.ModuleID] = c.ApprovalStatus
	}

	detail := &PathwayDetail{Pathway: pathway, Progress: progress}
	for _, module := range modules {
		status, ok := statusByModule[module.ID]
		if !ok {
			status = model.ApprovalNotSubmitted
		}
		approved := status == model.ApprovalApproved
		detail.Modules = append(detail.Modules, ModuleWithCompletion{
			Module:         module,
			ApprovalStatus: status,
			Completed:      approved,
		})
		if !approved && detail.NextModule == nil {
			m := module
			detail.NextModule = &m
		}
	}

	return detail, nil
}

func (s *ProgressService) ensureProgressRow(userID uint, pathwayID string) (*model.UserProgress, error) {
	progress, err := s.ProgressRepo.FindByUserAndPathway(userID, pathwayID)
	if err == nil {
		return progress, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	now := time.Now()
	progress = &model.UserProgress{
		UserID:         userID,
		PathwayID:      pathwayID,
		StartedAt:      now,
		LastAccessedAt: now,
	}
	if err := s.ProgressRepo.Create(progress); err != nil {
		return nil, err
	}
	return progress, nil
}

// RecomputePathwayProgress re-derives the UserProgress row from approved
// module completions. It runs on the caller's transaction so the module
// transition and the pathway rollup commit together and never observably
// diverge.
func (s *ProgressService) RecomputePathwayProgress(tx *gorm.DB, userID uint, pathwayID string) error {
	moduleRepo := repository.NewModuleRepository(tx)
	completionRepo := repository.NewModuleCompletionRepository(tx)
	progressRepo := repository.NewUserProgressRepository(tx)

	total, err := moduleRepo.CountByPathway(pathwayID)
	if err != nil {
		return err
	}
	approved, err := completionRepo.CountApproved(userID, pathwayID)
	if err != nil {
		return err
	}
	timeSpent, err := completionRepo.SumApprovedTime(userID, pathwayID)
	if err != nil {
		return err
	}

	progress, err := progressRepo.FindByUserAndPathway(userID, pathwayID)
	if err == gorm.ErrRecordNotFound {
		now := time.Now()
		progress = &model.UserProgress{
			UserID:         userID,
			PathwayID:      pathwayID,
			StartedAt:      now,
			LastAccessedAt: now,
		}
		if err := progressRepo.Create(progress); err != nil {
			return err
		}
	} else if err != nil {
		return err
	}

	progress.CompletedModules = int(approved)
	progress.TotalTimeSpentMinutes = timeSpent
	if total > 0 {
		progress.ProgressPercentage = int(100 * approved / total)
	}
	progress.LastAccessedAt = time.Now()
	if progress.ProgressPercentage == 100 && progress.CompletedAt == nil {
		now := time.Now()
		progress.CompletedAt = &now
	}

	return progressRepo.Save(progress)
}

// PathwayCard is one entry on the student dashboard.
type PathwayCard struct {
	ID         string `json:"id"`
	Slug       string `json:"slug"`
	Title      string `json:"title"`
	ShortTitle string `json:"shortTitle"`
	Instructor string `json:"instructor"`
	Color      string `json:"color"`
	Progress   int    `json:"progress"`
}

// RecentAchievement is a compact earned-achievement entry for the
// dashboard.
type RecentAchievement struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Icon     string    `json:"icon"`
	EarnedAt time.Time `json:"earnedAt"`
}

type DashboardData struct {
	Pathways []PathwayCard `json:"pathways"`
	Summary  struct {
		PathwaysStarted   int `json:"pathwaysStarted"`
		PathwaysCompleted int `json:"pathwaysCompleted"`
		ModulesCompleted  int `json:"modulesCompleted"`
		TotalTimeMinutes  int `json:"totalTimeSpentMinutes"`
	} `json:"summary"`
	Streak struct {
		Current int `json:"current"`
		Longest int `json:"longest"`
	} `json:"streak"`
	RecentAchievements []RecentAchievement `json:"recentAchievements"`
}

func dashboardCacheKey(userID uint) string {
	return fmt.Sprintf("dashboard:%d", userID)
}

// Dashboard assembles the pathway cards and totals, cached in redis for
// five minutes. The cache is dropped on every workflow transition.
func (s *ProgressService) Dashboard(ctx context.Context, userID uint) (*DashboardData, error) {
	if s.Redis != nil {
		if raw, err := s.Redis.Get(ctx, dashboardCacheKey(userID)).Result(); err == nil {
			var cached DashboardData
			if json.Unmarshal([]byte(raw), &cached) == nil {
				return &cached, nil
			}
		}
	}

	pathways, err := s.PathwayRepo.FindAll()
	if err != nil {
		return nil, err
	}
	progressRows, err := s.ProgressRepo.ListByUser(userID)
	if err != nil {
		return nil, err
	}
	progressByPathway := make(map[string]model.UserProgress, len(progressRows))
	for _, p := range progressRows {
		progressByPathway[p.PathwayID] = p
	}

	data := &DashboardData{Pathways: []PathwayCard{}}
	for _, pathway := range pathways {
		percent := 0
		if p, ok := progressByPathway[pathway.ID]; ok {
			percent = p.ProgressPercentage
			if percent > 0 {
				data.Summary.PathwaysStarted++
			}
			if percent == 100 {
				data.Summary.PathwaysCompleted++
			}
			data.Summary.TotalTimeMinutes += p.TotalTimeSpentMinutes
		}
		data.Pathways = append(data.Pathways, PathwayCard{
			ID:         pathway.ID,
			Slug:       pathway.Slug,
			Title:      pathway.Title,
			ShortTitle: pathway.ShortTitle,
			Instructor: pathway.Instructor,
			Color:      pathway.Color,
			Progress:   percent,
		})
	}

	modules, err := s.ModuleCompletionRepo.CountByUser(userID)
	if err != nil {
		return nil, err
	}
	data.Summary.ModulesCompleted = int(modules)

	if streak, err := s.ProgressRepo.FindStreak(userID); err == nil {
		data.Streak.Current = streak.CurrentStreak
		data.Streak.Longest = streak.LongestStreak
	}

	data.RecentAchievements = []RecentAchievement{}
	if earned, err := s.ProgressRepo.ListUserAchievements(userID); err == nil && len(earned) > 0 {
		catalog, err := s.ProgressRepo.ListAchievements()
		if err == nil {
			byID := make(map[string]model.Achievement, len(catalog))
			for _, a := range catalog {
				byID[a.ID] = a
			}
			for _, ua := range earned {
				if len(data.RecentAchievements) == 5 {
					break
				}
				if a, ok := byID[ua.AchievementID]; ok {
					data.RecentAchievements = append(data.RecentAchievements, RecentAchievement{
						ID:       a.ID,
						Name:     a.Name,
						Icon:     a.Icon,
						EarnedAt: ua.EarnedAt,
					})
				}
			}
		}
	}

	if s.Redis != nil {
		if raw, err := json.Marshal(data); err == nil {
			s.Redis.Set(ctx, dashboardCacheKey(userID), raw, dashboardCacheTTL)
		}
	}
	return data, nil
}

// InvalidateCache drops the user's cached dashboard after a transition.
func (s *ProgressService) InvalidateCache(ctx context.Context, userID uint) {
	if s.Redis != nil {
		s.Redis.Del(ctx, dashboardCacheKey(userID))
	}
}
