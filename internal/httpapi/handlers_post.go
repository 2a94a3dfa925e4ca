package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/latroca/latroca-api/internal/post"
)

// postForm reads the multipart listing form shared by create and update:
// title, description, category, need, optional location fields and up to
// three "photos" files.
func (a *API) postForm(c *gin.Context) (post.Request, error) {
	req := post.Request{
		Title:       c.PostForm("title"),
		Description: c.PostForm("description"),
		Category:    c.PostForm("category"),
		Need:        c.PostForm("need"),
		Location:    formLocation(c),
	}

	form, err := c.MultipartForm()
	if err != nil {
		// No multipart body at all: leave photos empty, the service
		// validates the rest.
		return req, nil
	}
	for _, fh := range form.File["photos"] {
		name, ct, data, err := readUpload(fh)
		if err != nil {
			return req, err
		}
		req.Photos = append(req.Photos, post.Photo{Name: name, ContentType: ct, Data: data})
	}
	return req, nil
}

func (a *API) handleCreatePost(c *gin.Context) {
	req, err := a.postForm(c)
	if err != nil {
		respondErr(c, err)
		return
	}

	res, err := a.Posts.Create(c.Request.Context(), claimsFrom(c).UserID, req)
	if err != nil {
		respondErr(c, err)
		return
	}
	respond(c, http.StatusCreated, "Publicación creada.", res)
}

func (a *API) handleListPosts(c *gin.Context) {
	res, err := a.Posts.All(c.Request.Context())
	if err != nil {
		respondErr(c, err)
		return
	}
	respond(c, http.StatusOK, "Publicaciones obtenidas.", res)
}

func (a *API) handleMyPosts(c *gin.Context) {
	res, err := a.Posts.ByUser(c.Request.Context(), claimsFrom(c).UserID)
	if err != nil {
		respondErr(c, err)
		return
	}
	respond(c, http.StatusOK, "Publicaciones obtenidas.", res)
}

func (a *API) handlePostByID(c *gin.Context) {
	res, err := a.Posts.ByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondErr(c, err)
		return
	}
	respond(c, http.StatusOK, "Publicación obtenida.", res)
}

func (a *API) handleUpdatePost(c *gin.Context) {
	req, err := a.postForm(c)
	if err != nil {
		respondErr(c, err)
		return
	}

	if err := a.Posts.Update(c.Request.Context(), c.Param("id"), claimsFrom(c).UserID, req); err != nil {
		respondErr(c, err)
		return
	}
	respond(c, http.StatusOK, "Publicación actualizada.", nil)
}

func (a *API) handleDeletePost(c *gin.Context) {
	if err := a.Posts.Delete(c.Request.Context(), c.Param("id"), claimsFrom(c).UserID); err != nil {
		respondErr(c, err)
		return
	}
	respond(c, http.StatusOK, "Publicación eliminada.", nil)
}
