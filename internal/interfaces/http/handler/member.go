package handler

import (
	"mime/multipart"

	appmembership "github.com/aqueduct/backend/internal/application/membership"
	"github.com/gin-gonic/gin"
)

// MemberHandler handles member registry endpoints
type MemberHandler struct {
	BaseHandler
	memberService *appmembership.MemberService
}

// NewMemberHandler creates a new MemberHandler
func NewMemberHandler(memberService *appmembership.MemberService) *MemberHandler {
	return &MemberHandler{memberService: memberService}
}

// Create handles POST /members
func (h *MemberHandler) Create(c *gin.Context) {
	var req appmembership.CreateMemberRequest
	if !h.bindJSON(c, &req) {
		return
	}

	member, err := h.memberService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, member)
}

// GetByID handles GET /members/:id. The member's properties are included.
func (h *MemberHandler) GetByID(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}

	member, err := h.memberService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, member)
}

// Update handles PUT /members/:id
func (h *MemberHandler) Update(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}

	var req appmembership.UpdateMemberRequest
	if !h.bindJSON(c, &req) {
		return
	}

	member, err := h.memberService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, member)
}

// List handles GET /members
func (h *MemberHandler) List(c *gin.Context) {
	var filter appmembership.MemberListFilter
	if !h.bindQuery(c, &filter) {
		return
	}

	members, total, err := h.memberService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	page, pageSize := pagination(filter.Page, filter.PageSize)
	h.SuccessWithMeta(c, members, total, page, pageSize)
}

// Import handles POST /members/import with a multipart "file" field
func (h *MemberHandler) Import(c *gin.Context) {
	file, ok := h.uploadedFile(c)
	if !ok {
		return
	}
	defer file.Close()

	result, err := h.memberService.ImportMembers(c.Request.Context(), file)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, result)
}

// pagination applies the list defaults used by the repositories
func pagination(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	return page, pageSize
}

// uploadedFile opens the multipart "file" field of the request
func (h *BaseHandler) uploadedFile(c *gin.Context) (multipart.File, bool) {
	header, err := c.FormFile("file")
	if err != nil {
		h.BadRequest(c, `A CSV file is required in the "file" field`)
		return nil, false
	}
	file, err := header.Open()
	if err != nil {
		h.BadRequest(c, "Uploaded file cannot be read")
		return nil, false
	}
	return file, true
}
