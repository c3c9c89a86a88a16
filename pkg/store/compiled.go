package store

import (
	bolt "go.etcd.io/bbolt"

	. "github.com/izreit/sifon/pkg/store/storedefs"
)

func init() {
	initDB["initialize compiled code table"] = func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketCompiled))
		return err
	}
}

// Code returns the code cached under key.
func (s *dbStore) Code(key Key) (string, error) {
	var code string
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket([]byte(bucketCompiled)).Get(key[:])
		if v == nil {
			return ErrNoCode
		}
		code = string(v)
		return nil
	})
	return code, err
}

// PutCode caches code under key.
func (s *dbStore) PutCode(key Key, code string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketCompiled)).Put(key[:], []byte(code))
	})
}

// DelCode drops the code cached under key.
func (s *dbStore) DelCode(key Key) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketCompiled)).Delete(key[:])
	})
}

// NumCodes returns the number of cached compilations.
func (s *dbStore) NumCodes() (int, error) {
	var n int
	err := s.db.View(func(tx *bolt.Tx) error {
		n = tx.Bucket([]byte(bucketCompiled)).Stats().KeyN
		return nil
	})
	return n, err
}

// Purge drops all cached code.
func (s *dbStore) Purge() error {
	return s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket([]byte(bucketCompiled)); err != nil && err != bolt.ErrBucketNotFound {
			return err
		}
		_, err := tx.CreateBucket([]byte(bucketCompiled))
		return err
	})
}
