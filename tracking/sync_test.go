package tracking

import (
	"context"
	"io/ioutil"
	"os"
	"sort"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

func tableNames(t []TrackedTable) []string {
	retval := make([]string, len(t))
	for i, v := range t {
		retval[i] = v.TableName
	}
	sort.Strings(retval)
	return retval
}

var _ = Describe("Sync", func() {
	var (
		ctx context.Context
		dir string
		env *testEnv
	)

	BeforeEach(func() {
		var err error
		ctx = context.Background()
		dir, err = ioutil.TempDir("", "ct-sync")
		Expect(err).NotTo(HaveOccurred())
		env, err = newTestEnv(dir, "ATK_Orders", "ATK_Customers")
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		_ = os.RemoveAll(dir)
	})

	It("registers every discovered table with load set", func() {
		tables, err := env.store.SyncProject(ctx, "proj1", testSourceConnection, "main")
		Expect(err).NotTo(HaveOccurred())
		Expect(tables).To(ConsistOf(
			TrackedTable{ProjectID: "proj1", TableName: "ATK_Orders", Load: true},
			TrackedTable{ProjectID: "proj1", TableName: "ATK_Customers", Load: true},
		))
		listed, err := env.store.ListTables(ctx, "proj1")
		Expect(err).NotTo(HaveOccurred())
		Expect(listed).To(ConsistOf(tables))
	})

	It("inserts nothing the second time and returns the same tables", func() {
		first, err := env.store.Sync(ctx, "proj1", testSourceConnection, "main")
		Expect(err).NotTo(HaveOccurred())
		Expect(first.Inserted).To(Equal(2))
		second, err := env.store.Sync(ctx, "proj1", testSourceConnection, "main")
		Expect(err).NotTo(HaveOccurred())
		Expect(second.Inserted).To(Equal(0))
		Expect(second.Skipped).To(Equal(2))
		Expect(second.Tables).To(ConsistOf(first.Tables))
	})

	It("never overwrites the load flag of a registered table", func() {
		_, err := env.store.SyncProject(ctx, "proj1", testSourceConnection, "main")
		Expect(err).NotTo(HaveOccurred())
		Expect(env.store.ApplyFieldUpdates(ctx, "proj1", []FieldUpdate{{TableName: "ATK_Orders", Field: "load", NewValue: false}})).To(Succeed())
		tables, err := env.store.SyncProject(ctx, "proj1", testSourceConnection, "main")
		Expect(err).NotTo(HaveOccurred())
		Expect(tables).To(ContainElement(TrackedTable{ProjectID: "proj1", TableName: "ATK_Orders", Load: false}))
	})

	It("keeps the other tables when one insert fails", func() {
		Expect(env.createSourceTables("ATK_A", "ATK_B", "ATK_C")).To(Succeed())
		store := env.withFaults("ATK_B")
		result, err := store.Sync(ctx, "proj1", testSourceConnection, "main")
		Expect(err).NotTo(HaveOccurred())
		Expect(result.Discovered).To(Equal(5))
		Expect(result.Failed).To(Equal(1))
		Expect(result.Inserted).To(Equal(4))
		Expect(tableNames(result.Tables)).To(Equal([]string{"ATK_A", "ATK_C", "ATK_Customers", "ATK_Orders"}))
	})

	It("rolls back to the savepoint when the tracking store rejects a row", func() {
		Expect(env.createSourceTables("ATK_A", "ATK_B", "ATK_C")).To(Succeed())
		Expect(env.execTracking(`CREATE TRIGGER reject_atk_b BEFORE INSERT ON ct_tables
			WHEN NEW.table_name = 'ATK_B' BEGIN SELECT RAISE(ABORT, 'ATK_B rejected'); END`)).To(Succeed())
		result, err := env.store.Sync(ctx, "proj1", testSourceConnection, "main")
		Expect(err).NotTo(HaveOccurred())
		Expect(result.Discovered).To(Equal(5))
		Expect(result.Failed).To(Equal(1))
		Expect(result.Inserted).To(Equal(4))
		tables, err := env.store.ListTables(ctx, "proj1")
		Expect(err).NotTo(HaveOccurred())
		Expect(tableNames(tables)).To(Equal([]string{"ATK_A", "ATK_C", "ATK_Customers", "ATK_Orders"}))
	})

	It("keeps projects apart", func() {
		_, err := env.store.SyncProject(ctx, "proj1", testSourceConnection, "main")
		Expect(err).NotTo(HaveOccurred())
		tables, err := env.store.SyncProject(ctx, "proj2", testSourceConnection, "main")
		Expect(err).NotTo(HaveOccurred())
		Expect(tables).To(HaveLen(2))
		all, err := env.store.ListTables(ctx, "")
		Expect(err).NotTo(HaveOccurred())
		Expect(all).To(HaveLen(4))
	})

	It("filters discovered tables by prefix", func() {
		Expect(env.createSourceTables("OTHER_Table")).To(Succeed())
		names, err := env.store.DiscoverWithOptions(ctx, testSourceConnection, "main", DiscoveryOptions{Prefix: "ATK_"})
		Expect(err).NotTo(HaveOccurred())
		Expect(names).To(Equal([]string{"ATK_Customers", "ATK_Orders"}))
	})

	It("filters discovered tables using a JSON Logic rule", func() {
		rule := `{"==": [{"var": "table_name"}, "ATK_Orders"]}`
		names, err := env.store.DiscoverWithOptions(ctx, testSourceConnection, "main", DiscoveryOptions{Rule: rule})
		Expect(err).NotTo(HaveOccurred())
		Expect(names).To(Equal([]string{"ATK_Orders"}))
	})

	It("reports SourceUnavailable and writes nothing when the source cannot be reached", func() {
		_, err := env.store.SyncProject(ctx, "proj1", "missing", "main")
		Expect(IsKind(err, SourceUnavailable)).To(BeTrue())
		tables, err := env.store.ListTables(ctx, "proj1")
		Expect(err).NotTo(HaveOccurred())
		Expect(tables).To(BeEmpty())
	})

	It("rejects database names that cannot be quoted safely", func() {
		_, err := env.store.SyncProject(ctx, "proj1", testSourceConnection, "main]; DROP TABLE x; --")
		Expect(IsKind(err, ValidationError)).To(BeTrue())
	})

	It("closes every connection it opens", func() {
		_, err := env.store.SyncProject(ctx, "proj1", testSourceConnection, "main")
		Expect(err).NotTo(HaveOccurred())
		_, err = env.store.SyncProject(ctx, "proj1", "missing", "main")
		Expect(err).To(HaveOccurred())
		Expect(env.opener.opened).To(BeNumerically(">", 0))
		Expect(env.opener.closed).To(Equal(env.opener.opened))
	})
})

var _ = Describe("ApplyFieldUpdates", func() {
	var (
		ctx context.Context
		dir string
		env *testEnv
	)

	BeforeEach(func() {
		var err error
		ctx = context.Background()
		dir, err = ioutil.TempDir("", "ct-fields")
		Expect(err).NotTo(HaveOccurred())
		env, err = newTestEnv(dir, "T1", "T2", "T3")
		Expect(err).NotTo(HaveOccurred())
		_, err = env.store.SyncProject(ctx, "proj1", testSourceConnection, "main")
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		_ = os.RemoveAll(dir)
	})

	updates := []FieldUpdate{
		{TableName: "T1", Field: "load", NewValue: false},
		{TableName: "T2", Field: "load", NewValue: "false"},
		{TableName: "T3", Field: "load", NewValue: 0.0},
	}

	It("applies all updates", func() {
		Expect(env.store.ApplyFieldUpdates(ctx, "proj1", updates)).To(Succeed())
		tables, err := env.store.ListTables(ctx, "proj1")
		Expect(err).NotTo(HaveOccurred())
		for _, t := range tables {
			Expect(t.Load).To(BeFalse())
		}
	})

	It("applies none of the updates when the second fails", func() {
		err := env.withFaults("T2").ApplyFieldUpdates(ctx, "proj1", updates)
		Expect(IsKind(err, TrackingStoreUnavailable)).To(BeTrue())
		tables, err := env.store.ListTables(ctx, "proj1")
		Expect(err).NotTo(HaveOccurred())
		Expect(tables).To(HaveLen(3))
		for _, t := range tables {
			Expect(t.Load).To(BeTrue())
		}
	})

	It("applies none of the updates when the tracking store rejects one", func() {
		Expect(env.execTracking(`CREATE TRIGGER reject_t3 BEFORE UPDATE ON ct_tables
			WHEN NEW.table_name = 'T3' BEGIN SELECT RAISE(ABORT, 'T3 rejected'); END`)).To(Succeed())
		err := env.store.ApplyFieldUpdates(ctx, "proj1", updates)
		Expect(IsKind(err, TrackingStoreUnavailable)).To(BeTrue())
		tables, err := env.store.ListTables(ctx, "proj1")
		Expect(err).NotTo(HaveOccurred())
		Expect(tables).To(HaveLen(3))
		for _, t := range tables {
			Expect(t.Load).To(BeTrue())
		}
	})

	It("rejects columns that are not updatable before executing anything", func() {
		err := env.store.ApplyFieldUpdates(ctx, "proj1", []FieldUpdate{
			{TableName: "T1", Field: "load", NewValue: false},
			{TableName: "T2", Field: "table_name = 'x'; --", NewValue: "y"},
		})
		Expect(IsKind(err, InvalidColumn)).To(BeTrue())
		tables, err := env.store.ListTables(ctx, "proj1")
		Expect(err).NotTo(HaveOccurred())
		for _, t := range tables {
			Expect(t.Load).To(BeTrue())
		}
	})

	It("rejects values that are not booleans", func() {
		err := env.store.ApplyFieldUpdates(ctx, "proj1", []FieldUpdate{{TableName: "T1", Field: "load", NewValue: "maybe"}})
		Expect(IsKind(err, ValidationError)).To(BeTrue())
	})

	It("matches on table name only when no project is given", func() {
		_, err := env.store.SyncProject(ctx, "proj2", testSourceConnection, "main")
		Expect(err).NotTo(HaveOccurred())
		Expect(env.store.ApplyFieldUpdates(ctx, "", []FieldUpdate{{TableName: "T1", Field: "LOAD", NewValue: "0"}})).To(Succeed())
		all, err := env.store.ListTables(ctx, "")
		Expect(err).NotTo(HaveOccurred())
		for _, t := range all {
			Expect(t.Load).To(Equal(t.TableName != "T1"))
		}
	})
})
