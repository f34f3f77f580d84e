// components/album/album.go
//
// Album pages – the representative thin content handler.
//
// Context
// -------
// Album create is the busiest submission on the site: a multipart form
// with a title, a cover-image file part, and an indexed track list
// (songs[0], songs[1], …).  By the time these handlers run, the request
// assembler has already stored the cover image and flattened the track
// list, so the code below is the schema-shaped plumbing the rest of the
// content types copy: permission check → typed params → persist →
// redirect.
//
//------------------------------------------------------------------------------

package album

import (
	"database/sql"
	"errors"
	"html/template"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/supercar-band-unofficial/supercar-band-com-sub000/internal/component"
	"github.com/supercar-band-unofficial/supercar-band-com-sub000/internal/params"
	"github.com/supercar-band-unofficial/supercar-band-com-sub000/internal/requestctx"
	"github.com/supercar-band-unofficial/supercar-band-com-sub000/internal/routing"
)

// EditCapability gates album creation and editing.
const EditCapability = "album.edit"

var _ component.Component = (*Component)(nil)

// Component serves album view and create pages.
type Component struct {
	db        *sqlx.DB
	assembler *requestctx.Assembler
}

func init() { component.Register(&Component{}) }

/*────────────────── component.Component methods ───────────────────────────*/

func (c *Component) Name() string { return "album" }

func (c *Component) Init(info component.SiteInfo) error {
	c.db = info.GetDB()
	c.assembler = info.GetAssembler()
	return nil
}

func (c *Component) Routes(r chi.Router) {
	r.Get("/albums/new", c.assembler.Assemble(c.handleNewGET))
	r.Post("/albums", c.assembler.Assemble(c.handleCreatePOST))
	r.Get("/albums/{slug}", c.assembler.Assemble(c.handleViewGET))
}

/*──────────────────────────── Typed params ─────────────────────────────────*/

// albumForm is the typed view of the create submission.  CoverImage
// already holds the sink-generated storage name, never file bytes.
type albumForm struct {
	Title      string
	CoverImage string
	Songs      []string
}

// Build implements params.Builder.
func (f *albumForm) Build(p *params.Params) error {
	var err error
	if f.Title, err = params.Require(p, "title"); err != nil {
		return err
	}
	f.CoverImage = p.Get("cover-image")
	f.Songs = params.List(p, "songs")
	return nil
}

/*──────────────────────────── Handlers ─────────────────────────────────────*/

const newPage = `<!doctype html>
<title>New album</title>
<h1>New album</h1>
<form method="post" action="/albums" enctype="multipart/form-data">
  <label>Title <input name="title"></label>
  <label>Cover image <input name="cover-image" type="file" accept="image/*"></label>
  <label>Track 1 <input name="songs[0]"></label>
  <label>Track 2 <input name="songs[1]"></label>
  <label>Track 3 <input name="songs[2]"></label>
  <button type="submit">Create</button>
</form>`

func (c *Component) handleNewGET(w http.ResponseWriter, r *http.Request) {
	rc := requestctx.FromContext(r.Context())
	if !rc.SignedIn() || !rc.Session.Can(EditCapability) {
		http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(newPage))
}

func (c *Component) handleCreatePOST(w http.ResponseWriter, r *http.Request) {
	rc := requestctx.FromContext(r.Context())
	if !rc.SignedIn() || !rc.Session.Can(EditCapability) {
		http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
		return
	}

	var form albumForm
	if err := params.Build(rc.Params, &form); err != nil {
		http.Error(w, "A title is required.", http.StatusBadRequest)
		return
	}

	slug := routing.MakeSlug(form.Title)
	if err := c.insert(r, slug, &form); err != nil {
		zap.S().Errorw("album insert failed", "slug", slug, "err", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, routing.BuildPath("albums", slug), http.StatusSeeOther)
}

func (c *Component) insert(r *http.Request, slug string, form *albumForm) error {
	tx, err := c.db.BeginTxx(r.Context(), nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(r.Context(),
		`INSERT INTO album (slug, title, cover_image) VALUES (?, ?, ?)`,
		slug, form.Title, form.CoverImage)
	if err != nil {
		return err
	}
	albumID, err := res.LastInsertId()
	if err != nil {
		return err
	}

	for i, title := range form.Songs {
		if strings.TrimSpace(title) == "" {
			continue // omitted track positions stay empty
		}
		if _, err := tx.ExecContext(r.Context(),
			`INSERT INTO album_song (album_id, position, title) VALUES (?, ?, ?)`,
			albumID, i, title); err != nil {
			return err
		}
	}
	return tx.Commit()
}

var viewTmpl = template.Must(template.New("album").Parse(`<!doctype html>
<title>{{.Title}}</title>
<h1>{{.Title}}</h1>
{{if .CoverImage}}<img src="/uploads/{{.CoverImage}}" alt="{{.Title}} cover">{{end}}
<ol>
{{range .Songs}}  <li>{{.}}</li>
{{end}}</ol>`))

type albumView struct {
	Title      string `db:"title"`
	CoverImage string `db:"cover_image"`
	Songs      []string
}

func (c *Component) handleViewGET(w http.ResponseWriter, r *http.Request) {
	rc := requestctx.FromContext(r.Context())
	slug := rc.Params.Get("slug")

	var view albumView
	err := c.db.GetContext(r.Context(), &view,
		`SELECT title, cover_image FROM album WHERE slug = ?`, slug)
	if errors.Is(err, sql.ErrNoRows) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		zap.S().Errorw("album fetch failed", "slug", slug, "err", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	if err := c.db.SelectContext(r.Context(), &view.Songs,
		`SELECT title FROM album_song WHERE album_id =
		   (SELECT id FROM album WHERE slug = ?) ORDER BY position`, slug); err != nil {
		zap.S().Errorw("album songs fetch failed", "slug", slug, "err", err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_ = viewTmpl.Execute(w, view)
}
