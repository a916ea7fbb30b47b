package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"

	"tourify/database/repository"
	"tourify/utils"
)

// Hooks customize the generic CRUD handlers per resource. Pre hooks run
// before the database call and may mutate the document or the query; an
// error aborts the request. Post hooks run after a successful write and
// their errors are logged, not surfaced.
type Hooks[T any] struct {
	PreCreate  func(c *gin.Context, doc *T) error
	PostCreate func(c *gin.Context, doc *T)
	PreList    func(c *gin.Context, q *repository.ListOptions) error
	PreUpdate  func(c *gin.Context, id string, patch bson.M) error
	PostUpdate func(c *gin.Context, doc *T)
	PreDelete  func(c *gin.Context, id string) error
	PostDelete func(c *gin.Context, id string)
}

// CRUD serves the standard list/get/create/update/delete endpoints for a
// resource over the generic repository.
type CRUD[T any] struct {
	Repo  *repository.Repo[T]
	Hooks Hooks[T]
}

func NewCRUD[T any](repo *repository.Repo[T], hooks Hooks[T]) *CRUD[T] {
	return &CRUD[T]{Repo: repo, Hooks: hooks}
}

func (h *CRUD[T]) List(c *gin.Context) {
	q := repository.ParseListOptions(c.Request.URL.Query())
	if h.Hooks.PreList != nil {
		if err := h.Hooks.PreList(c, &q); err != nil {
			utils.AbortWithError(c, err)
			return
		}
	}

	docs, err := h.Repo.Find(c.Request.Context(), q)
	if err != nil {
		utils.AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"results": len(docs),
		"data":    docs,
	})
}

func (h *CRUD[T]) Get(c *gin.Context) {
	doc, err := h.Repo.FindByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "data": doc})
}

func (h *CRUD[T]) Create(c *gin.Context) {
	var doc T
	if err := c.ShouldBindJSON(&doc); err != nil {
		utils.AbortWithError(c, err)
		return
	}
	if h.Hooks.PreCreate != nil {
		if err := h.Hooks.PreCreate(c, &doc); err != nil {
			utils.AbortWithError(c, err)
			return
		}
	}

	if err := h.Repo.InsertOne(c.Request.Context(), &doc); err != nil {
		utils.AbortWithError(c, err)
		return
	}
	if h.Hooks.PostCreate != nil {
		h.Hooks.PostCreate(c, &doc)
	}

	c.JSON(http.StatusCreated, gin.H{"status": "success", "data": doc})
}

func (h *CRUD[T]) Update(c *gin.Context) {
	var patch bson.M
	if err := c.ShouldBindJSON(&patch); err != nil {
		utils.AbortWithError(c, err)
		return
	}
	for _, k := range []string{"id", "_id", "createdAt", "updatedAt"} {
		delete(patch, k)
	}
	if len(patch) == 0 {
		utils.AbortWithError(c, utils.NewAppError(http.StatusBadRequest, "nothing to update"))
		return
	}

	id := c.Param("id")
	if h.Hooks.PreUpdate != nil {
		if err := h.Hooks.PreUpdate(c, id, patch); err != nil {
			utils.AbortWithError(c, err)
			return
		}
	}

	current, err := h.Repo.FindByID(c.Request.Context(), id)
	if err != nil {
		utils.AbortWithError(c, err)
		return
	}
	if err := validatePatched(current, patch); err != nil {
		utils.AbortWithError(c, err)
		return
	}

	doc, err := h.Repo.UpdateByID(c.Request.Context(), id, patch)
	if err != nil {
		utils.AbortWithError(c, err)
		return
	}
	if h.Hooks.PostUpdate != nil {
		h.Hooks.PostUpdate(c, doc)
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "data": doc})
}

func (h *CRUD[T]) Delete(c *gin.Context) {
	id := c.Param("id")
	if h.Hooks.PreDelete != nil {
		if err := h.Hooks.PreDelete(c, id); err != nil {
			utils.AbortWithError(c, err)
			return
		}
	}

	if err := h.Repo.DeleteByID(c.Request.Context(), id); err != nil {
		utils.AbortWithError(c, err)
		return
	}
	if h.Hooks.PostDelete != nil {
		h.Hooks.PostDelete(c, id)
	}

	c.Status(http.StatusNoContent)
}

// validatePatched replays the patch over the stored document and runs
// the model's binding rules against the result, so a partial update
// cannot sidestep the constraints enforced at create time.
func validatePatched[T any](current *T, patch bson.M) error {
	raw, err := json.Marshal(current)
	if err != nil {
		return err
	}
	var merged map[string]interface{}
	if err := json.Unmarshal(raw, &merged); err != nil {
		return err
	}
	for k, v := range patch {
		merged[k] = v
	}

	raw, err = json.Marshal(merged)
	if err != nil {
		return utils.NewAppError(http.StatusBadRequest, "invalid value in update payload")
	}
	var doc T
	if err := json.Unmarshal(raw, &doc); err != nil {
		return utils.NewAppError(http.StatusBadRequest, "invalid value in update payload")
	}
	return binding.Validator.ValidateStruct(&doc)
}

// logHookFailure is shared by post hooks that run side effects such as
// cache invalidation or derived-stat recomputation.
func logHookFailure(what string, err error) {
	if err != nil {
		utils.GetLogger().Error("post hook failed", zap.String("hook", what), zap.Error(err))
	}
}
