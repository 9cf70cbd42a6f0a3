package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/pkg/errors"
)

// Uploader stores files in remote storage.
type Uploader interface {
	Upload(ctx context.Context, data []byte, remotePath string) error
}

// Disk talks to the Yandex.Disk REST API. Remote paths are relative to
// Folder.
type Disk struct {
	Endpoint string
	Token    string
	Folder   string
	Client   *http.Client
}

func NewDisk(endpoint, token, folder string, client *http.Client) *Disk {
	return &Disk{
		Endpoint: strings.TrimRight(endpoint, "/"),
		Token:    token,
		Folder:   strings.TrimRight(folder, "/"),
		Client:   client,
	}
}

type link struct {
	Href   string `json:"href"`
	Method string `json:"method"`
}

// Ensure creates dirs (relative to Folder), and Folder itself, when missing.
func (d *Disk) Ensure(ctx context.Context, dirs ...string) error {
	all := []string{d.Folder}
	for _, dir := range dirs {
		all = append(all, path.Join(d.Folder, dir))
	}

	for _, p := range all {
		exists, err := d.exists(ctx, p)
		if err != nil {
			return err
		}
		if exists {
			continue
		}
		if err := d.mkdir(ctx, p); err != nil {
			return err
		}
	}

	return nil
}

func (d *Disk) exists(ctx context.Context, p string) (bool, error) {
	resp, err := d.do(ctx, http.MethodGet, "/v1/disk/resources", url.Values{"path": {p}})
	if err != nil {
		return false, errors.Wrapf(err, "cannot stat %s", p)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		return true, nil
	case http.StatusNotFound:
		return false, nil
	}

	return false, errors.Errorf("cannot stat %s: %s", p, resp.Status)
}

func (d *Disk) mkdir(ctx context.Context, p string) error {
	resp, err := d.do(ctx, http.MethodPut, "/v1/disk/resources", url.Values{"path": {p}})
	if err != nil {
		return errors.Wrapf(err, "cannot create %s", p)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusConflict {
		return errors.Errorf("cannot create %s: %s", p, resp.Status)
	}

	return nil
}

func (d *Disk) Upload(ctx context.Context, data []byte, remotePath string) error {
	full := path.Join(d.Folder, remotePath)

	resp, err := d.do(ctx, http.MethodGet, "/v1/disk/resources/upload", url.Values{
		"path":      {full},
		"overwrite": {"true"},
	})
	if err != nil {
		return errors.Wrap(err, "cannot request upload link")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return errors.Errorf("cannot request upload link for %s: %s", full, resp.Status)
	}

	var l link
	if err := json.NewDecoder(resp.Body).Decode(&l); err != nil {
		return errors.Wrap(err, "cannot decode upload link")
	}

	method := l.Method
	if method == "" {
		method = http.MethodPut
	}

	req, err := http.NewRequest(method, l.Href, bytes.NewReader(data))
	if err != nil {
		return errors.Wrap(err, "cannot create upload request")
	}

	put, err := d.Client.Do(req.WithContext(ctx))
	if err != nil {
		return errors.Wrap(err, "cannot upload")
	}
	defer put.Body.Close()

	if put.StatusCode != http.StatusCreated && put.StatusCode != http.StatusAccepted {
		return errors.Errorf("cannot upload %s: %s", full, put.Status)
	}

	return nil
}

func (d *Disk) do(ctx context.Context, method, endpoint string, query url.Values) (*http.Response, error) {
	req, err := http.NewRequest(method, d.Endpoint+endpoint+"?"+query.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "OAuth "+d.Token)
	req.Header.Set("Accept", "application/json")

	return d.Client.Do(req.WithContext(ctx))
}
