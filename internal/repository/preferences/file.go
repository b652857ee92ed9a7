package preferences

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/oshokin/tempwatch/internal/config"
	"github.com/oshokin/tempwatch/internal/domain/profile"
)

// Repository defines persistence operations for the user profile.
type Repository interface {
	Load(ctx context.Context) (*profile.UserProfile, error)
	Save(ctx context.Context, p *profile.UserProfile) error
}

// FileRepository persists the profile to a JSON file on disk.
type FileRepository struct {
	// path is the filesystem location of the preferences file.
	path string
	// mu serializes access to the file.
	mu sync.Mutex
}

var (
	// ErrNotFound is returned when the preferences file does not exist yet.
	ErrNotFound = errors.New("preferences not found")
	// errProfileIsNotSet is returned when saving a nil profile.
	errProfileIsNotSet = errors.New("profile is not set")
)

// NewFileRepository creates a repository reading and writing path.
func NewFileRepository(path string) *FileRepository {
	return &FileRepository{
		path: filepath.Clean(path),
	}
}

// Path returns the preferences file location.
func (r *FileRepository) Path() string {
	return r.path
}

// Load reads the profile. Keys missing from the file keep their defaults.
func (r *FileRepository) Load(_ context.Context) (*profile.UserProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	contents, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("read preferences file: %w", err)
	}

	var document structpb.Struct
	if err = protojson.Unmarshal(contents, &document); err != nil {
		return nil, fmt.Errorf("decode preferences file: %w", err)
	}

	result := FromStruct(&document)

	return &result, nil
}

// Save writes the profile to disk, replacing the previous file atomically.
func (r *FileRepository) Save(_ context.Context, p *profile.UserProfile) error {
	if p == nil {
		return errProfileIsNotSet
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	marshalOptions := protojson.MarshalOptions{
		Multiline:       true,
		EmitUnpopulated: true,
	}

	data, err := marshalOptions.Marshal(ToStruct(*p))
	if err != nil {
		return fmt.Errorf("encode preferences: %w", err)
	}

	tmp := r.path + ".tmp"
	if err = os.WriteFile(tmp, data, config.DefaultFilePermissions); err != nil {
		return fmt.Errorf("write preferences file: %w", err)
	}

	if err = os.Rename(tmp, r.path); err != nil {
		_ = os.Remove(tmp)

		return fmt.Errorf("replace preferences file: %w", err)
	}

	return nil
}

// ToStruct converts the profile into its persisted key-value form.
func ToStruct(p profile.UserProfile) *structpb.Struct {
	return &structpb.Struct{
		Fields: map[string]*structpb.Value{
			string(profile.FieldUsername):     structpb.NewStringValue(p.Username),
			string(profile.FieldProfileImage): structpb.NewStringValue(p.ProfileImageLocation),
		},
	}
}

// FromStruct converts a key-value document into a profile, applying defaults
// for missing or non-string entries.
func FromStruct(s *structpb.Struct) profile.UserProfile {
	result := profile.Default()

	fields := s.GetFields()

	if v, ok := fields[string(profile.FieldUsername)].GetKind().(*structpb.Value_StringValue); ok && v.StringValue != "" {
		result.Username = v.StringValue
	}

	if v, ok := fields[string(profile.FieldProfileImage)].GetKind().(*structpb.Value_StringValue); ok {
		result.ProfileImageLocation = v.StringValue
	}

	return result
}
