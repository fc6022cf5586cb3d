package handlers

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"physioplan/internal/apperrors"
	"physioplan/internal/models"
)

// tolerant to context value types (int / int64 / float64 / string)
func getIntFromCtx(c *gin.Context, key string) (int, bool) {
	v, ok := c.Get(key)
	if !ok {
		return 0, false
	}
	switch t := v.(type) {
	case int:
		return t, true
	case int64:
		return int(t), true
	case float64:
		return int(t), true
	case string:
		if n, err := strconv.Atoi(t); err == nil {
			return n, true
		}
	}
	return 0, false
}

// getIdentity resolves the authenticated identity placed into the context by
// the auth middleware. ok=false means the request carried no usable identity.
func getIdentity(c *gin.Context) (models.Identity, bool) {
	id, ok := getIntFromCtx(c, "user_id")
	if !ok || id == 0 {
		return models.Identity{}, false
	}
	email := c.GetString("email")
	if email == "" {
		return models.Identity{}, false
	}
	return models.Identity{UserID: id, Email: email}, true
}

// respondError maps a structured error to its HTTP status and echoes the
// structured payload (reasons, similar records, submission id) to the caller.
func respondError(c *gin.Context, err error) {
	var ae *apperrors.Error
	if !errors.As(err, &ae) {
		c.JSON(500, gin.H{"error": "internal error"})
		return
	}
	body := gin.H{
		"error": ae.Message,
		"kind":  ae.Kind.String(),
	}
	if len(ae.Reasons) > 0 {
		body["reasons"] = ae.Reasons
	}
	if len(ae.SimilarIDs) > 0 {
		body["similar_records"] = ae.SimilarIDs
	}
	if ae.SubmissionID != "" {
		body["pain_data_id"] = ae.SubmissionID
	}
	c.JSON(ae.Kind.HTTPStatus(), body)
}
