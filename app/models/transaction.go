package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"

	"bookstack/core/storage"
)

// ParagraphText holds the summarized paragraph keyed by language code
// (e.g. "en", "hi"). Stored as a JSON document in a single column.
type ParagraphText map[string]string

func (p ParagraphText) Value() (driver.Value, error) {
	if p == nil {
		return "{}", nil
	}
	b, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (p *ParagraphText) Scan(value any) error {
	if value == nil {
		*p = ParagraphText{}
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported paragraph column type %T", value)
	}
	if len(data) == 0 {
		*p = ParagraphText{}
		return nil
	}
	return json.Unmarshal(data, p)
}

// Transaction is one summarized reading: a paragraph taken from a book
// page with the reader's annotations and taxonomy links.
type Transaction struct {
	Id                uint                `json:"id" gorm:"primarykey"`
	CreatedAt         time.Time           `json:"created_at"`
	UpdatedAt         time.Time           `json:"updated_at"`
	DeletedAt         gorm.DeletedAt      `json:"deleted_at" gorm:"index"`
	UserId            uint                `json:"user_id" gorm:"index;not null"`
	BookId            uint                `json:"book_id" gorm:"index;not null"`
	Book              *Book               `json:"book,omitempty" gorm:"foreignKey:BookId;references:Id"`
	SrNo              int                 `json:"sr_no" gorm:"index"`
	Title             string              `json:"title" gorm:"size:500"`
	PageNo            string              `json:"page_no" gorm:"size:50"`
	ParagraphNo       string              `json:"paragraph_no" gorm:"size:50"`
	InformationRating *string             `json:"information_rating" gorm:"size:50"`
	Remark            string              `json:"remark" gorm:"type:text"`
	Footnote          string              `json:"footnote" gorm:"type:text"`
	Keywords          string              `json:"keywords" gorm:"type:text"`
	Summary           string              `json:"summary" gorm:"type:text"`
	Conclusion        string              `json:"conclusion" gorm:"type:text"`
	Paragraph         ParagraphText       `json:"paragraph" gorm:"type:text"`
	Subjects          []Subject           `json:"subjects" gorm:"many2many:transaction_subjects;"`
	Tags              []Tag               `json:"tags" gorm:"many2many:transaction_tags;"`
	PageImage         *storage.Attachment `json:"page_image,omitempty" gorm:"foreignKey:ModelId;references:Id"`
}

func (m *Transaction) TableName() string {
	return "transactions"
}

func (m *Transaction) GetId() uint {
	return m.Id
}

func (m *Transaction) GetModelName() string {
	return "transaction"
}

// GetUserId returns the owning user's id
func (m *Transaction) GetUserId() uint {
	return m.UserId
}

// CreateTransactionRequest represents the request payload for creating a Transaction
type CreateTransactionRequest struct {
	BookId            uint              `json:"book_id" binding:"required"`
	SrNo              int               `json:"sr_no"`
	Title             string            `json:"title" binding:"max=500"`
	PageNo            string            `json:"page_no" binding:"max=50"`
	ParagraphNo       string            `json:"paragraph_no" binding:"max=50"`
	InformationRating *string           `json:"information_rating"`
	Remark            string            `json:"remark"`
	Footnote          string            `json:"footnote"`
	Keywords          string            `json:"keywords"`
	Summary           string            `json:"summary"`
	Conclusion        string            `json:"conclusion"`
	Paragraph         map[string]string `json:"paragraph"`
	SubjectIds        []uint            `json:"subject_ids"`
	TagIds            []uint            `json:"tag_ids"`
}

// UpdateTransactionRequest represents the request payload for updating a Transaction.
// Pointer fields distinguish "leave unchanged" from "set empty".
type UpdateTransactionRequest struct {
	BookId            uint              `json:"book_id,omitempty"`
	SrNo              *int              `json:"sr_no,omitempty"`
	Title             *string           `json:"title,omitempty" binding:"omitempty,max=500"`
	PageNo            *string           `json:"page_no,omitempty" binding:"omitempty,max=50"`
	ParagraphNo       *string           `json:"paragraph_no,omitempty" binding:"omitempty,max=50"`
	InformationRating *string           `json:"information_rating,omitempty"`
	Remark            *string           `json:"remark,omitempty"`
	Footnote          *string           `json:"footnote,omitempty"`
	Keywords          *string           `json:"keywords,omitempty"`
	Summary           *string           `json:"summary,omitempty"`
	Conclusion        *string           `json:"conclusion,omitempty"`
	Paragraph         map[string]string `json:"paragraph,omitempty"`
	SubjectIds        *[]uint           `json:"subject_ids,omitempty"`
	TagIds            *[]uint           `json:"tag_ids,omitempty"`
}

// TransactionResponse represents the API response for Transaction
type TransactionResponse struct {
	Id                uint                   `json:"id"`
	CreatedAt         time.Time              `json:"created_at"`
	UpdatedAt         time.Time              `json:"updated_at"`
	UserId            uint                   `json:"user_id"`
	BookId            uint                   `json:"book_id"`
	Book              *BookModelResponse     `json:"book,omitempty"`
	SrNo              int                    `json:"sr_no"`
	Title             string                 `json:"title"`
	PageNo            string                 `json:"page_no"`
	ParagraphNo       string                 `json:"paragraph_no"`
	InformationRating *string                `json:"information_rating"`
	Remark            string                 `json:"remark"`
	Footnote          string                 `json:"footnote"`
	Keywords          string                 `json:"keywords"`
	Summary           string                 `json:"summary"`
	Conclusion        string                 `json:"conclusion"`
	Paragraph         map[string]string      `json:"paragraph"`
	Subjects          []SubjectModelResponse `json:"subjects"`
	Tags              []TagModelResponse     `json:"tags"`
	PageImage         *storage.Attachment    `json:"page_image,omitempty"`
}

// TransactionSelectOption represents a simplified response for select boxes and dropdowns
type TransactionSelectOption struct {
	Id   uint   `json:"id"`
	Name string `json:"name"` // From Title field
}

// ToResponse converts the model to an API response
func (m *Transaction) ToResponse() *TransactionResponse {
	if m == nil {
		return nil
	}
	response := &TransactionResponse{
		Id:                m.Id,
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
		UserId:            m.UserId,
		BookId:            m.BookId,
		SrNo:              m.SrNo,
		Title:             m.Title,
		PageNo:            m.PageNo,
		ParagraphNo:       m.ParagraphNo,
		InformationRating: m.InformationRating,
		Remark:            m.Remark,
		Footnote:          m.Footnote,
		Keywords:          m.Keywords,
		Summary:           m.Summary,
		Conclusion:        m.Conclusion,
		Paragraph:         m.Paragraph,
		Subjects:          make([]SubjectModelResponse, 0, len(m.Subjects)),
		Tags:              make([]TagModelResponse, 0, len(m.Tags)),
		PageImage:         m.PageImage,
	}
	if m.Book != nil {
		response.Book = m.Book.ToModelResponse()
	}
	for i := range m.Subjects {
		response.Subjects = append(response.Subjects, *m.Subjects[i].ToModelResponse())
	}
	for i := range m.Tags {
		response.Tags = append(response.Tags, *m.Tags[i].ToModelResponse())
	}
	return response
}

// ToSelectOption converts the model to a select option for dropdowns
func (m *Transaction) ToSelectOption() *TransactionSelectOption {
	if m == nil {
		return nil
	}
	name := m.Title
	if name == "" {
		name = fmt.Sprintf("Transaction #%d", m.SrNo)
	}
	return &TransactionSelectOption{
		Id:   m.Id,
		Name: name,
	}
}

// Preload preloads all the model's relationships
func (m *Transaction) Preload(db *gorm.DB) *gorm.DB {
	return db.Preload("Book").
		Preload("Subjects").
		Preload("Tags").
		Preload("PageImage", "model_type = ? AND field = ?", "transaction", "page_image")
}
