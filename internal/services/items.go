package services

import (
	"context"
	"errors"
	"strconv"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/lunadata/weekreport/internal/models"
	"github.com/lunadata/weekreport/pkg/logger"
	"github.com/lunadata/weekreport/pkg/snowflake"
)

// CreateItemInput creates one manual line. Only the SELF tab accepts manual
// lines; ParentID, when set, must name a root item of the same report.
type CreateItemInput struct {
	ReportID    int64
	TabType     string
	ParentID    *int64
	ContentJSON string
	SortOrder   int
}

// ItemNode is one item with its children, as served by the tree view.
type ItemNode struct {
	ItemDTO
	Children []ItemDTO `json:"children,omitempty"`
}

// ItemsService edits single report lines: content updates, manual SELF
// lines and soft deletes.
type ItemsService struct {
	db  *gorm.DB
	ids *snowflake.Generator
	log zerolog.Logger
}

func NewItemsService(db *gorm.DB, ids *snowflake.Generator) *ItemsService {
	return &ItemsService{db: db, ids: ids, log: logger.Module("items")}
}

// Update replaces an item's content payload after validating it against the
// item's tab schema.
func (s *ItemsService) Update(ctx context.Context, id int64, contentJSON string) (*ItemDTO, error) {
	item, err := s.findLive(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := ValidateContent(item.TabType, contentJSON); err != nil {
		return nil, err
	}

	item.ContentJSON = contentJSON
	if err := s.db.WithContext(ctx).Save(item).Error; err != nil {
		return nil, err
	}

	s.log.Info().Int64("item_id", id).Str("tab_type", item.TabType).Msg("item updated")
	dto := itemToDTO(item)
	return &dto, nil
}

// Create inserts one manual SELF line. A parented line must attach to a
// root item of the same report so the tree never exceeds two levels.
func (s *ItemsService) Create(ctx context.Context, in CreateItemInput) (*ItemDTO, error) {
	if in.TabType != models.TabSelf {
		return nil, &ValidationError{Msg: "manual items are limited to the SELF tab"}
	}
	if err := ValidateContent(in.TabType, in.ContentJSON); err != nil {
		return nil, err
	}

	var report models.Report
	err := s.db.WithContext(ctx).
		Where("id = ? AND is_deleted = ?", in.ReportID, false).
		First(&report).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &NotFoundError{Resource: "report", ID: strconv.FormatInt(in.ReportID, 10)}
	}
	if err != nil {
		return nil, err
	}

	if in.ParentID != nil {
		parent, err := s.findLive(ctx, *in.ParentID)
		if err != nil {
			return nil, err
		}
		if parent.ReportID != in.ReportID {
			return nil, &ValidationError{Msg: "parent item belongs to a different report"}
		}
		if parent.ParentID != nil {
			return nil, &ValidationError{Msg: "parent item is not a root, max tree depth is 2"}
		}
	}

	id, err := s.ids.NextID()
	if err != nil {
		return nil, err
	}
	item := models.ReportItem{
		ID:          id,
		ReportID:    in.ReportID,
		TabType:     in.TabType,
		SourceType:  models.SourceManual,
		ParentID:    in.ParentID,
		ContentJSON: in.ContentJSON,
		SortOrder:   in.SortOrder,
	}
	if err := s.db.WithContext(ctx).Create(&item).Error; err != nil {
		return nil, err
	}

	s.log.Info().Int64("item_id", id).Int64("report_id", in.ReportID).Msg("manual item created")
	dto := itemToDTO(&item)
	return &dto, nil
}

// Delete soft-deletes an item and any children attached to it.
func (s *ItemsService) Delete(ctx context.Context, id int64) error {
	if _, err := s.findLive(ctx, id); err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.ReportItem{}).
			Where("id = ?", id).
			Update("is_deleted", true).Error; err != nil {
			return err
		}
		return tx.Model(&models.ReportItem{}).
			Where("parent_id = ?", id).
			Update("is_deleted", true).Error
	})
}

// Tree returns a report's live items for one tab as a two-level tree,
// children grouped under their parent in sort order.
func (s *ItemsService) Tree(ctx context.Context, reportID int64, tabType string) ([]ItemNode, error) {
	var items []models.ReportItem
	if err := s.db.WithContext(ctx).
		Where("report_id = ? AND tab_type = ? AND is_deleted = ?", reportID, tabType, false).
		Order("sort_order ASC").
		Find(&items).Error; err != nil {
		return nil, err
	}

	childrenByParent := make(map[int64][]ItemDTO)
	var roots []ItemNode
	for _, item := range items {
		if item.ParentID == nil {
			roots = append(roots, ItemNode{ItemDTO: itemToDTO(&item)})
			continue
		}
		childrenByParent[*item.ParentID] = append(childrenByParent[*item.ParentID], itemToDTO(&item))
	}
	for i := range roots {
		rootID, _ := strconv.ParseInt(roots[i].ID, 10, 64)
		roots[i].Children = childrenByParent[rootID]
	}
	return roots, nil
}

func (s *ItemsService) findLive(ctx context.Context, id int64) (*models.ReportItem, error) {
	var item models.ReportItem
	err := s.db.WithContext(ctx).
		Where("id = ? AND is_deleted = ?", id, false).
		First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &NotFoundError{Resource: "item", ID: strconv.FormatInt(id, 10)}
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func itemToDTO(item *models.ReportItem) ItemDTO {
	dto := ItemDTO{
		ID:          strconv.FormatInt(item.ID, 10),
		TabType:     item.TabType,
		SourceType:  item.SourceType,
		ContentJSON: item.ContentJSON,
		SortOrder:   item.SortOrder,
	}
	if item.ParentID != nil {
		dto.ParentID = strconv.FormatInt(*item.ParentID, 10)
	}
	return dto
}
