package repository

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"
)

const (
	rolesDirectoryNameConstant            = "roles"
	playbooksDirectoryNameConstant        = "playbooks"
	playbookExtensionConstant             = ".yml"
	currentDirectoryConstant              = "."
	rolesEnumerationErrorTemplateConstant = "unable to enumerate roles directory %s: %w"
	playbooksWalkErrorTemplateConstant    = "unable to enumerate playbooks directory %s: %w"
	rootEnumerationErrorTemplateConstant  = "unable to enumerate repository root %s: %w"
	rootRequiredMessageConstant           = "repository root must be provided"
	fileSystemRequiredMessageConstant     = "repository file system must be provided"
)

// Role describes one directory under roles/.
type Role struct {
	Name         string
	RelativePath string
}

// Snapshot is a read-only view of a repository tree. Relative paths use forward
// slashes and are resolved against the file system; Path converts them into
// paths under the repository root for reporting.
type Snapshot struct {
	root       string
	fileSystem fs.FS
	roles      []Role
	playbooks  []string
}

// Load enumerates the roles and playbooks of the repository rooted at root.
// Failing to enumerate either top-level directory is an error; playbooks are
// listed to validate the layout and reported as a count. Symlinked roles are
// followed.
func Load(fileSystem fs.FS, root string) (*Snapshot, error) {
	if fileSystem == nil {
		return nil, errors.New(fileSystemRequiredMessageConstant)
	}
	if len(strings.TrimSpace(root)) == 0 {
		return nil, errors.New(rootRequiredMessageConstant)
	}

	roleEntries, readRolesError := fs.ReadDir(fileSystem, rolesDirectoryNameConstant)
	if readRolesError != nil {
		return nil, fmt.Errorf(rolesEnumerationErrorTemplateConstant, filepath.Join(root, rolesDirectoryNameConstant), readRolesError)
	}

	roles := make([]Role, 0, len(roleEntries))
	for _, roleEntry := range roleEntries {
		if !resolveEntryMode(fileSystem, rolesDirectoryNameConstant, roleEntry).IsDir() {
			continue
		}
		roles = append(roles, Role{
			Name:         roleEntry.Name(),
			RelativePath: path.Join(rolesDirectoryNameConstant, roleEntry.Name()),
		})
	}

	playbooks, playbooksError := discoverPlaybooks(fileSystem, root)
	if playbooksError != nil {
		return nil, playbooksError
	}

	return &Snapshot{
		root:       root,
		fileSystem: fileSystem,
		roles:      roles,
		playbooks:  playbooks,
	}, nil
}

func discoverPlaybooks(fileSystem fs.FS, root string) ([]string, error) {
	var playbooks []string

	walkError := fs.WalkDir(fileSystem, playbooksDirectoryNameConstant, func(currentPath string, directoryEntry fs.DirEntry, walkError error) error {
		if walkError != nil {
			if currentPath == playbooksDirectoryNameConstant {
				return walkError
			}
			return nil
		}
		if directoryEntry.IsDir() {
			return nil
		}
		if strings.HasSuffix(directoryEntry.Name(), playbookExtensionConstant) {
			playbooks = append(playbooks, currentPath)
		}
		return nil
	})
	if walkError != nil {
		return nil, fmt.Errorf(playbooksWalkErrorTemplateConstant, filepath.Join(root, playbooksDirectoryNameConstant), walkError)
	}

	rootEntries, rootError := fs.ReadDir(fileSystem, currentDirectoryConstant)
	if rootError != nil {
		return nil, fmt.Errorf(rootEnumerationErrorTemplateConstant, root, rootError)
	}
	for _, rootEntry := range rootEntries {
		if resolveEntryMode(fileSystem, currentDirectoryConstant, rootEntry).IsRegular() && strings.HasSuffix(rootEntry.Name(), playbookExtensionConstant) {
			playbooks = append(playbooks, rootEntry.Name())
		}
	}

	sort.Strings(playbooks)
	return playbooks, nil
}

// Roles returns the roles sorted by name.
func (snapshot *Snapshot) Roles() []Role {
	return append([]Role{}, snapshot.roles...)
}

// Playbooks returns relative playbook paths: every .yml under playbooks/ and at the root.
// No rule inspects playbook content; the engine reports the count.
func (snapshot *Snapshot) Playbooks() []string {
	return append([]string{}, snapshot.playbooks...)
}

// Path joins relative path elements onto the repository root.
func (snapshot *Snapshot) Path(elements ...string) string {
	relativePath := path.Join(elements...)
	return filepath.Join(snapshot.root, filepath.FromSlash(relativePath))
}

// RelativePath expresses a reportable path relative to the repository root.
func (snapshot *Snapshot) RelativePath(reportablePath string) string {
	relativePath, relativeError := filepath.Rel(snapshot.root, reportablePath)
	if relativeError != nil {
		return reportablePath
	}
	return relativePath
}

// Exists reports whether the relative path exists.
func (snapshot *Snapshot) Exists(elements ...string) bool {
	_, statError := fs.Stat(snapshot.fileSystem, path.Join(elements...))
	return statError == nil
}

// Subdirectories returns the names of directories directly under the relative path.
func (snapshot *Snapshot) Subdirectories(relativePath string) []string {
	entries, readError := fs.ReadDir(snapshot.fileSystem, relativePath)
	if readError != nil {
		return nil
	}
	var directories []string
	for _, entry := range entries {
		if resolveEntryMode(snapshot.fileSystem, relativePath, entry).IsDir() {
			directories = append(directories, entry.Name())
		}
	}
	return directories
}

// Files returns relative paths of regular files directly under relativePath.
func (snapshot *Snapshot) Files(relativePath string) []string {
	entries, readError := fs.ReadDir(snapshot.fileSystem, relativePath)
	if readError != nil {
		return nil
	}
	var files []string
	for _, entry := range entries {
		if resolveEntryMode(snapshot.fileSystem, relativePath, entry).IsRegular() {
			files = append(files, path.Join(relativePath, entry.Name()))
		}
	}
	return files
}

// WalkFiles returns relative paths of every regular file below relativePath in
// lexical order, including symlinks to regular files. Symlinked directories
// below relativePath are not descended. Unreadable subtrees are skipped.
func (snapshot *Snapshot) WalkFiles(relativePath string) []string {
	var files []string
	_ = fs.WalkDir(snapshot.fileSystem, relativePath, func(currentPath string, directoryEntry fs.DirEntry, walkError error) error {
		if walkError != nil {
			if directoryEntry != nil && directoryEntry.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if directoryEntry.IsDir() {
			return nil
		}
		if resolveEntryMode(snapshot.fileSystem, path.Dir(currentPath), directoryEntry).IsRegular() {
			files = append(files, currentPath)
		}
		return nil
	})
	return files
}

// ReadText returns the file content when it can be read and decodes as UTF-8.
func (snapshot *Snapshot) ReadText(relativePath string) (string, bool) {
	content, readError := fs.ReadFile(snapshot.fileSystem, relativePath)
	if readError != nil {
		return "", false
	}
	if !utf8.Valid(content) {
		return "", false
	}
	return string(content), true
}

// resolveEntryMode returns the entry's mode, following a symlink to its target.
// A dangling link resolves to the link itself.
func resolveEntryMode(fileSystem fs.FS, parent string, entry fs.DirEntry) fs.FileMode {
	if entry.Type()&fs.ModeSymlink == 0 {
		return entry.Type()
	}
	targetInfo, statError := fs.Stat(fileSystem, path.Join(parent, entry.Name()))
	if statError != nil {
		return entry.Type()
	}
	return targetInfo.Mode()
}
